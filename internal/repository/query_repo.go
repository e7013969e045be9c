package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jovas-007/Olap-practica-jovas/internal/models"
)

const PreviewLimit = 200

var ErrUnknownTarget = errors.New("tabla no disponible para vista previa")

// Fila de la consulta de horario por docente
type ScheduleRow struct {
	Docente   string `json:"docente"`
	DiaCodigo string `json:"dia_codigo"`
	DiaSemana int    `json:"dia_semana"`
	Inicio    string `json:"inicio"`
	Fin       string `json:"fin"`
	Minutos   int    `json:"minutos"`
	Clave     string `json:"clave"`
	Materia   string `json:"materia"`
	Edificio  string `json:"edificio"`
	Salon     string `json:"salon"`
}

// Docente presente en un edificio a cierta hora
type PresenceRow struct {
	Docente   string `json:"docente"`
	DiaCodigo string `json:"dia_codigo"`
	DiaSemana int    `json:"dia_semana"`
}

type SubjectOption struct {
	Clave  string `json:"clave"`
	Nombre string `json:"nombre"`
}

// PresenceFilter describe la consulta de docentes por edificio y hora.
// Hora debe venir como "HH:MM:SS"; Salon vacío abarca todo el edificio.
type PresenceFilter struct {
	Edificio string
	Salon    string
	Hora     string
	Slots    bool
}

type QueryRepo struct {
	db *gorm.DB
}

func NewQueryRepo(db *gorm.DB) *QueryRepo {
	return &QueryRepo{db: db}
}

// likeEscaper neutraliza los comodines de LIKE en el texto del usuario; las
// consultas lo acompañan con ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// TeacherSchedule devuelve el horario semanal de los docentes cuyo nombre
// contiene docente (sin distinguir mayúsculas) dentro del scope.
func (q *QueryRepo) TeacherSchedule(ctx context.Context, scope Scope, docente string) ([]ScheduleRow, error) {
	var results []ScheduleRow

	err := q.db.WithContext(ctx).Table("fact_clase f").
		Select(`d.nombre_completo AS docente, t.dia_codigo, t.dia_semana,
			CAST(f.inicio AS TEXT) AS inicio, CAST(f.fin AS TEXT) AS fin, f.minutos,
			a.clave, a.nombre AS materia, e.edificio, e.salon`).
		Joins("JOIN dim_docente d ON f.fk_docente = d.id").
		Joins("JOIN dim_asignatura a ON f.fk_asignatura = a.id").
		Joins("JOIN dim_tiempo t ON f.fk_tiempo = t.id").
		Joins("JOIN dim_espacio e ON f.fk_espacio = e.id").
		Where("f.periodo = @periodo AND f.plan = @plan AND LOWER(d.nombre_completo) LIKE LOWER(@docente) ESCAPE '\\'",
			map[string]any{"periodo": scope.Periodo, "plan": scope.Plan, "docente": "%" + escapeLike(docente) + "%"}).
		Order("d.nombre_completo, t.dia_semana, f.inicio").
		Scan(&results).Error

	return results, err
}

// SubjectTeachersByClave lista los docentes de las asignaturas cuya clave
// empieza con prefix.
func (q *QueryRepo) SubjectTeachersByClave(ctx context.Context, prefix string) ([]string, error) {
	return q.subjectTeachers(ctx, "UPPER(a.clave) LIKE UPPER(@clave) ESCAPE '\\'", map[string]any{"clave": escapeLike(prefix) + "%"})
}

// SubjectTeachersByName lista los docentes de las asignaturas cuyo nombre
// contiene text.
func (q *QueryRepo) SubjectTeachersByName(ctx context.Context, text string) ([]string, error) {
	return q.subjectTeachers(ctx, "LOWER(a.nombre) LIKE LOWER(@texto) ESCAPE '\\'", map[string]any{"texto": "%" + escapeLike(text) + "%"})
}

func (q *QueryRepo) subjectTeachers(ctx context.Context, where string, args map[string]any) ([]string, error) {
	var names []string

	err := q.db.WithContext(ctx).Table("fact_clase f").
		Distinct("d.nombre_completo").
		Joins("JOIN dim_docente d ON f.fk_docente = d.id").
		Joins("JOIN dim_asignatura a ON f.fk_asignatura = a.id").
		Where(where, args).
		Order("d.nombre_completo").
		Pluck("d.nombre_completo", &names).Error

	return names, err
}

// TeachersInBuilding devuelve los docentes con clase en curso a la hora dada:
// inicio <= hora < fin. Con Slots usa fact_clase_slot, que debe existir.
func (q *QueryRepo) TeachersInBuilding(ctx context.Context, f PresenceFilter) ([]PresenceRow, error) {
	db := q.db.WithContext(ctx)

	var query *gorm.DB
	if f.Slots {
		if !db.Migrator().HasTable(&models.FactClaseSlot{}) {
			return nil, ErrSlotsUnavailable
		}
		query = db.Table("fact_clase_slot s").
			Joins("JOIN dim_docente d ON s.fk_docente = d.id").
			Joins("JOIN dim_espacio e ON s.fk_espacio = e.id").
			Joins("JOIN dim_tiempo t ON s.fk_tiempo = t.id").
			Where("s.slot_inicio <= @hora AND s.slot_fin > @hora", map[string]any{"hora": f.Hora})
	} else {
		query = db.Table("fact_clase f").
			Joins("JOIN dim_docente d ON f.fk_docente = d.id").
			Joins("JOIN dim_espacio e ON f.fk_espacio = e.id").
			Joins("JOIN dim_tiempo t ON f.fk_tiempo = t.id").
			Where("f.inicio <= @hora AND f.fin > @hora", map[string]any{"hora": f.Hora})
	}

	query = query.Where("UPPER(e.edificio) = UPPER(@edificio)", map[string]any{"edificio": f.Edificio})
	if f.Salon != "" {
		query = query.Where("UPPER(e.salon) = UPPER(@salon)", map[string]any{"salon": f.Salon})
	}

	var results []PresenceRow
	err := query.
		Distinct("d.nombre_completo AS docente, t.dia_codigo, t.dia_semana").
		Order("docente, t.dia_semana").
		Scan(&results).Error

	return results, err
}

func (q *QueryRepo) Teachers(ctx context.Context) ([]string, error) {
	var names []string
	err := q.db.WithContext(ctx).Model(&models.DimDocente{}).
		Order("nombre_completo").
		Pluck("nombre_completo", &names).Error
	return names, err
}

func (q *QueryRepo) Subjects(ctx context.Context) ([]SubjectOption, error) {
	var results []SubjectOption
	err := q.db.WithContext(ctx).Model(&models.DimAsignatura{}).
		Select("clave, nombre").
		Order("clave").
		Scan(&results).Error
	return results, err
}

func (q *QueryRepo) Buildings(ctx context.Context) ([]string, error) {
	var names []string
	err := q.db.WithContext(ctx).Model(&models.DimEspacio{}).
		Distinct("edificio").
		Order("edificio").
		Pluck("edificio", &names).Error
	return names, err
}

// Hours lista las horas de inicio distintas registradas en los hechos.
func (q *QueryRepo) Hours(ctx context.Context) ([]string, error) {
	var hours []string
	err := q.db.WithContext(ctx).Table("fact_clase").
		Distinct("CAST(inicio AS TEXT) AS hora").
		Order("hora").
		Pluck("hora", &hours).Error
	return hours, err
}

var previewQueries = map[string]string{
	"dim_docente":    "SELECT id, nombre_completo FROM dim_docente ORDER BY id",
	"dim_asignatura": "SELECT id, clave, nombre, programa FROM dim_asignatura ORDER BY id",
	"dim_grupo":      "SELECT id, nrc, seccion, cruzada FROM dim_grupo ORDER BY id",
	"dim_tiempo":     "SELECT id, dia_codigo, dia_semana FROM dim_tiempo ORDER BY dia_semana",
	"dim_espacio":    "SELECT id, edificio, salon FROM dim_espacio ORDER BY id",
	"fact_clase": `SELECT f.id, d.nombre_completo AS docente, a.clave, g.nrc, t.dia_codigo,
		CAST(f.inicio AS TEXT) AS inicio, CAST(f.fin AS TEXT) AS fin, f.minutos,
		e.edificio, e.salon, f.periodo, f.plan
		FROM fact_clase f
		JOIN dim_docente d ON f.fk_docente = d.id
		JOIN dim_asignatura a ON f.fk_asignatura = a.id
		JOIN dim_grupo g ON f.fk_grupo = g.id
		JOIN dim_tiempo t ON f.fk_tiempo = t.id
		JOIN dim_espacio e ON f.fk_espacio = e.id
		ORDER BY f.id`,
	"fact_clase_slot": `SELECT id, fk_fact, fk_docente, fk_espacio, fk_tiempo,
		CAST(slot_inicio AS TEXT) AS slot_inicio, CAST(slot_fin AS TEXT) AS slot_fin, minutos
		FROM fact_clase_slot ORDER BY id`,
	"etl_run": `SELECT id, tipo, periodo, plan, fuente, registros, rechazados, hechos, finalizado_en
		FROM etl_run ORDER BY finalizado_en DESC`,
}

// PreviewTargets lista las tablas que admite Preview.
func PreviewTargets() []string {
	return []string{
		"fact_clase", "fact_clase_slot",
		"dim_docente", "dim_asignatura", "dim_grupo", "dim_tiempo", "dim_espacio",
		"etl_run",
	}
}

// Preview devuelve hasta PreviewLimit filas de una tabla conocida como texto.
func (q *QueryRepo) Preview(ctx context.Context, target string) ([]string, [][]string, error) {
	sql, ok := previewQueries[target]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
	db := q.db.WithContext(ctx)
	if !db.Migrator().HasTable(target) {
		if target == "fact_clase_slot" {
			return nil, nil, ErrSlotsUnavailable
		}
		return nil, nil, fmt.Errorf("tabla %s no existe, ejecute 'migrate'", target)
	}

	rows, err := db.Raw(sql + " LIMIT " + strconv.Itoa(PreviewLimit)).Rows()
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		values := make([]any, len(headers))
		ptrs := make([]any, len(headers))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = cellText(v)
		}
		out = append(out, row)
	}
	return headers, out, rows.Err()
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	case bool:
		if t {
			return "sí"
		}
		return "no"
	case [16]byte:
		return fmt.Sprintf("%x-%x-%x-%x-%x", t[0:4], t[4:6], t[6:8], t[8:10], t[10:16])
	default:
		return fmt.Sprint(t)
	}
}
