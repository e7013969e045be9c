package models

import (
	"time"

	"github.com/google/uuid"
)

// Dimensión de docentes
type DimDocente struct {
	ID             int    `gorm:"primaryKey;column:id"`
	NombreCompleto string `gorm:"column:nombre_completo;type:varchar(255);not null;uniqueIndex:uq_dim_docente_nombre"`
}

func (DimDocente) TableName() string {
	return "dim_docente"
}

// Dimensión de asignaturas, llave natural: clave
type DimAsignatura struct {
	ID       int    `gorm:"primaryKey;column:id"`
	Clave    string `gorm:"column:clave;type:varchar(50);not null;uniqueIndex:uq_dim_asignatura_clave"`
	Nombre   string `gorm:"column:nombre;type:varchar(255);not null"`
	Programa string `gorm:"column:programa;type:varchar(100);not null"`
}

func (DimAsignatura) TableName() string {
	return "dim_asignatura"
}

// Dimensión de grupos, llave natural: nrc
type DimGrupo struct {
	ID      int    `gorm:"primaryKey;column:id"`
	NRC     int    `gorm:"column:nrc;not null;uniqueIndex:uq_dim_grupo_nrc"`
	Seccion string `gorm:"column:seccion;type:varchar(20);not null"`
	Cruzada bool   `gorm:"column:cruzada;not null;default:false"`
}

func (DimGrupo) TableName() string {
	return "dim_grupo"
}

// Dimensión de días de la semana (L..S)
type DimTiempo struct {
	ID        int    `gorm:"primaryKey;column:id"`
	DiaCodigo string `gorm:"column:dia_codigo;type:char(1);not null;uniqueIndex:uq_dim_tiempo_dia;check:chk_dim_tiempo_codigo,dia_codigo IN ('L','A','M','J','V','S')"`
	DiaSemana int    `gorm:"column:dia_semana;type:smallint;not null;check:chk_dim_tiempo_semana,dia_semana BETWEEN 1 AND 6"`
}

func (DimTiempo) TableName() string {
	return "dim_tiempo"
}

// Dimensión de espacios, llave natural: (edificio, salon)
type DimEspacio struct {
	ID       int    `gorm:"primaryKey;column:id"`
	Edificio string `gorm:"column:edificio;type:varchar(100);not null;uniqueIndex:uq_dim_espacio_natural,priority:1"`
	Salon    string `gorm:"column:salon;type:varchar(100);not null;uniqueIndex:uq_dim_espacio_natural,priority:2"`
}

func (DimEspacio) TableName() string {
	return "dim_espacio"
}

// Tabla de hechos: una fila por clase y día
type FactClase struct {
	ID           int    `gorm:"primaryKey;column:id"`
	FkDocente    int    `gorm:"column:fk_docente;not null;index:idx_fact_clase_docente"`
	FkAsignatura int    `gorm:"column:fk_asignatura;not null"`
	FkGrupo      int    `gorm:"column:fk_grupo;not null"`
	FkTiempo     int    `gorm:"column:fk_tiempo;not null"`
	FkEspacio    int    `gorm:"column:fk_espacio;not null;index:idx_fact_clase_espacio"`
	Periodo      string `gorm:"column:periodo;type:varchar(50);not null;index:idx_fact_clase_scope,priority:1"`
	Plan         string `gorm:"column:plan;type:varchar(50);not null;index:idx_fact_clase_scope,priority:2"`
	Inicio       string `gorm:"column:inicio;type:time;not null"`
	Fin          string `gorm:"column:fin;type:time;not null;check:chk_fact_clase_rango,fin > inicio"`
	Minutos      int    `gorm:"column:minutos;not null;check:chk_fact_clase_minutos,minutos > 0"`

	Docente    DimDocente    `gorm:"foreignKey:FkDocente"`
	Asignatura DimAsignatura `gorm:"foreignKey:FkAsignatura"`
	Grupo      DimGrupo      `gorm:"foreignKey:FkGrupo"`
	Tiempo     DimTiempo     `gorm:"foreignKey:FkTiempo"`
	Espacio    DimEspacio    `gorm:"foreignKey:FkEspacio"`
}

func (FactClase) TableName() string {
	return "fact_clase"
}

// Vista derivada: tramos de 60 minutos de cada hecho
type FactClaseSlot struct {
	ID           int    `gorm:"primaryKey;column:id"`
	FkFact       int    `gorm:"column:fk_fact;not null"`
	FkDocente    int    `gorm:"column:fk_docente;not null"`
	FkAsignatura int    `gorm:"column:fk_asignatura;not null"`
	FkGrupo      int    `gorm:"column:fk_grupo;not null"`
	FkTiempo     int    `gorm:"column:fk_tiempo;not null"`
	FkEspacio    int    `gorm:"column:fk_espacio;not null;index:idx_fact_clase_slot_espacio"`
	Periodo      string `gorm:"column:periodo;type:varchar(50);not null"`
	Plan         string `gorm:"column:plan;type:varchar(50);not null"`
	SlotInicio   string `gorm:"column:slot_inicio;type:time;not null;index:idx_fact_clase_slot_inicio"`
	SlotFin      string `gorm:"column:slot_fin;type:time;not null;index:idx_fact_clase_slot_fin"`
	Minutos      int    `gorm:"column:minutos;not null"`

	Fact FactClase `gorm:"foreignKey:FkFact;constraint:OnDelete:CASCADE"`
}

func (FactClaseSlot) TableName() string {
	return "fact_clase_slot"
}

type RunKind string

const (
	RunLoad  RunKind = "load"
	RunSlots RunKind = "slots"
)

// Bitácora de corridas de carga y de recálculo de slots
type EtlRun struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Tipo         RunKind   `gorm:"column:tipo;type:varchar(20);not null;index:idx_etl_run_tipo_fin,priority:1"`
	Periodo      string    `gorm:"column:periodo;type:varchar(50);not null;default:''"`
	Plan         string    `gorm:"column:plan;type:varchar(50);not null;default:''"`
	Fuente       string    `gorm:"column:fuente;type:varchar(255);not null;default:''"`
	Registros    int       `gorm:"column:registros;not null;default:0"`
	Rechazados   int       `gorm:"column:rechazados;not null;default:0"`
	Hechos       int       `gorm:"column:hechos;not null;default:0"`
	IniciadoEn   time.Time `gorm:"column:iniciado_en;not null"`
	FinalizadoEn time.Time `gorm:"column:finalizado_en;not null;index:idx_etl_run_tipo_fin,priority:2"`
}

func (EtlRun) TableName() string {
	return "etl_run"
}
