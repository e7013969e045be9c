package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jovas-007/Olap-practica-jovas/internal/config"
	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
	"github.com/jovas-007/Olap-practica-jovas/internal/models"
)

const defaultBatchSize = 500

// Scope identifica el periodo y plan que una carga reemplaza.
type Scope struct {
	Periodo string
	Plan    string
}

type LoadRequest struct {
	RunID      uuid.UUID
	Source     string
	Records    []domain.ClassRecord
	Dims       domain.Dimensions
	Read       int
	Rejected   int
	StartedAt  time.Time
	FinishedAt time.Time
}

type LoadResult struct {
	Keys     domain.KeyMaps
	Facts    int
	Replaced int64
	Scopes   []Scope
}

type WarehouseRepo struct {
	db        *gorm.DB
	log       *zap.Logger
	batchSize int
}

func NewWarehouseRepo(db *gorm.DB, log *zap.Logger, batchSize int) *WarehouseRepo {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WarehouseRepo{db: db, log: log, batchSize: batchSize}
}

// Ping verifica que el almacén responda antes de iniciar una corrida.
func (r *WarehouseRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrStoreUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", config.ErrStoreUnavailable, err)
	}
	return nil
}

// Load escribe dimensiones, hechos y la bitácora de la corrida en una sola
// transacción. Los hechos existentes del mismo periodo y plan se reemplazan;
// si algo falla el almacén queda como estaba.
func (r *WarehouseRepo) Load(ctx context.Context, req LoadRequest) (LoadResult, error) {
	var res LoadResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keys, err := r.upsertDimensions(tx, req.Dims)
		if err != nil {
			return err
		}

		facts, err := domain.BuildFacts(req.Records, keys)
		if err != nil {
			return err
		}

		scopes := factScopes(facts)
		replaced, err := r.clearScopes(tx, scopes)
		if err != nil {
			return err
		}

		if len(facts) > 0 {
			rows := make([]models.FactClase, 0, len(facts))
			for _, f := range facts {
				rows = append(rows, toFactModel(f))
			}
			if err := tx.Omit(clause.Associations).CreateInBatches(&rows, r.batchSize).Error; err != nil {
				return fmt.Errorf("error insertando hechos: %w", err)
			}
		}

		run := models.EtlRun{
			ID:           req.RunID,
			Tipo:         models.RunLoad,
			Fuente:       req.Source,
			Registros:    req.Read,
			Rechazados:   req.Rejected,
			Hechos:       len(facts),
			IniciadoEn:   req.StartedAt,
			FinalizadoEn: req.FinishedAt,
		}
		if len(scopes) == 1 {
			run.Periodo, run.Plan = scopes[0].Periodo, scopes[0].Plan
		}
		if run.ID == uuid.Nil {
			run.ID = uuid.New()
		}
		if run.IniciadoEn.IsZero() {
			run.IniciadoEn = time.Now().UTC()
		}
		if run.FinalizadoEn.IsZero() {
			run.FinalizadoEn = time.Now().UTC()
		}
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("error registrando corrida: %w", err)
		}

		res = LoadResult{Keys: keys, Facts: len(facts), Replaced: replaced, Scopes: scopes}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDimensionResolution) {
			return LoadResult{}, err
		}
		return LoadResult{}, fmt.Errorf("carga revertida: %w", err)
	}

	if res.Replaced > 0 {
		r.log.Warn("recarga de periodo existente, hechos reemplazados",
			zap.Int64("reemplazados", res.Replaced),
			zap.Int("nuevos", res.Facts))
	}
	return res, nil
}

func (r *WarehouseRepo) upsertDimensions(tx *gorm.DB, dims domain.Dimensions) (domain.KeyMaps, error) {
	keys := domain.NewKeyMaps()

	if err := r.seedDays(tx, keys); err != nil {
		return keys, err
	}
	if err := r.upsertTeachers(tx, dims.Teachers, keys); err != nil {
		return keys, err
	}
	if err := r.upsertSubjects(tx, dims.Subjects, keys); err != nil {
		return keys, err
	}
	if err := r.upsertGroups(tx, dims.Groups, keys); err != nil {
		return keys, err
	}
	if err := r.upsertSpaces(tx, dims.Spaces, keys); err != nil {
		return keys, err
	}
	return keys, nil
}

// dim_tiempo siempre contiene los seis días, aunque la corrida no los use.
func (r *WarehouseRepo) seedDays(tx *gorm.DB, keys domain.KeyMaps) error {
	days := domain.Weekdays()
	rows := make([]models.DimTiempo, 0, len(days))
	for _, d := range days {
		rows = append(rows, models.DimTiempo{DiaCodigo: d.Code, DiaSemana: d.Ordinal})
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dia_codigo"}},
		DoNothing: true,
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("error sembrando dim_tiempo: %w", err)
	}

	var stored []models.DimTiempo
	if err := tx.Find(&stored).Error; err != nil {
		return fmt.Errorf("error leyendo dim_tiempo: %w", err)
	}
	for _, d := range stored {
		keys.Days[d.DiaCodigo] = d.ID
	}
	return nil
}

func (r *WarehouseRepo) upsertTeachers(tx *gorm.DB, names []string, keys domain.KeyMaps) error {
	if len(names) == 0 {
		return nil
	}
	rows := make([]models.DimDocente, 0, len(names))
	for _, n := range names {
		rows = append(rows, models.DimDocente{NombreCompleto: n})
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "nombre_completo"}},
		DoNothing: true,
	}).CreateInBatches(&rows, r.batchSize).Error
	if err != nil {
		return fmt.Errorf("error insertando docentes: %w", err)
	}

	for _, part := range chunks(names, r.batchSize) {
		var stored []models.DimDocente
		if err := tx.Where("nombre_completo IN ?", part).Find(&stored).Error; err != nil {
			return fmt.Errorf("error leyendo docentes: %w", err)
		}
		for _, d := range stored {
			keys.Teachers[d.NombreCompleto] = d.ID
		}
	}
	return nil
}

func (r *WarehouseRepo) upsertSubjects(tx *gorm.DB, subjects []domain.Subject, keys domain.KeyMaps) error {
	if len(subjects) == 0 {
		return nil
	}
	rows := make([]models.DimAsignatura, 0, len(subjects))
	claves := make([]string, 0, len(subjects))
	for _, s := range subjects {
		rows = append(rows, models.DimAsignatura{Clave: s.Clave, Nombre: s.Nombre, Programa: s.Programa})
		claves = append(claves, s.Clave)
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "clave"}},
		DoUpdates: clause.AssignmentColumns([]string{"nombre", "programa"}),
	}).CreateInBatches(&rows, r.batchSize).Error
	if err != nil {
		return fmt.Errorf("error insertando asignaturas: %w", err)
	}

	for _, part := range chunks(claves, r.batchSize) {
		var stored []models.DimAsignatura
		if err := tx.Where("clave IN ?", part).Find(&stored).Error; err != nil {
			return fmt.Errorf("error leyendo asignaturas: %w", err)
		}
		for _, a := range stored {
			keys.Subjects[a.Clave] = a.ID
		}
	}
	return nil
}

func (r *WarehouseRepo) upsertGroups(tx *gorm.DB, groups []domain.Group, keys domain.KeyMaps) error {
	if len(groups) == 0 {
		return nil
	}
	rows := make([]models.DimGrupo, 0, len(groups))
	nrcs := make([]int, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, models.DimGrupo{NRC: g.NRC, Seccion: g.Seccion, Cruzada: g.Cruzada})
		nrcs = append(nrcs, g.NRC)
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "nrc"}},
		DoUpdates: clause.AssignmentColumns([]string{"seccion", "cruzada"}),
	}).CreateInBatches(&rows, r.batchSize).Error
	if err != nil {
		return fmt.Errorf("error insertando grupos: %w", err)
	}

	for _, part := range chunks(nrcs, r.batchSize) {
		var stored []models.DimGrupo
		if err := tx.Where("nrc IN ?", part).Find(&stored).Error; err != nil {
			return fmt.Errorf("error leyendo grupos: %w", err)
		}
		for _, g := range stored {
			keys.Groups[g.NRC] = g.ID
		}
	}
	return nil
}

func (r *WarehouseRepo) upsertSpaces(tx *gorm.DB, spaces []domain.Space, keys domain.KeyMaps) error {
	if len(spaces) == 0 {
		return nil
	}
	rows := make([]models.DimEspacio, 0, len(spaces))
	buildings := map[string]bool{}
	for _, s := range spaces {
		rows = append(rows, models.DimEspacio{Edificio: s.Edificio, Salon: s.Salon})
		buildings[s.Edificio] = true
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "edificio"}, {Name: "salon"}},
		DoNothing: true,
	}).CreateInBatches(&rows, r.batchSize).Error
	if err != nil {
		return fmt.Errorf("error insertando espacios: %w", err)
	}

	names := make([]string, 0, len(buildings))
	for b := range buildings {
		names = append(names, b)
	}
	wanted := make(map[domain.Space]bool, len(spaces))
	for _, s := range spaces {
		wanted[s] = true
	}
	for _, part := range chunks(names, r.batchSize) {
		var stored []models.DimEspacio
		if err := tx.Where("edificio IN ?", part).Find(&stored).Error; err != nil {
			return fmt.Errorf("error leyendo espacios: %w", err)
		}
		for _, e := range stored {
			sp := domain.Space{Edificio: e.Edificio, Salon: e.Salon}
			if wanted[sp] {
				keys.Spaces[sp] = e.ID
			}
		}
	}
	return nil
}

// clearScopes borra slots y hechos de cada periodo/plan que se va a recargar.
func (r *WarehouseRepo) clearScopes(tx *gorm.DB, scopes []Scope) (int64, error) {
	var replaced int64
	for _, s := range scopes {
		err := tx.Where("periodo = ? AND plan = ?", s.Periodo, s.Plan).
			Delete(&models.FactClaseSlot{}).Error
		if err != nil {
			return 0, fmt.Errorf("error limpiando slots de %s/%s: %w", s.Periodo, s.Plan, err)
		}
		res := tx.Where("periodo = ? AND plan = ?", s.Periodo, s.Plan).Delete(&models.FactClase{})
		if res.Error != nil {
			return 0, fmt.Errorf("error limpiando hechos de %s/%s: %w", s.Periodo, s.Plan, res.Error)
		}
		replaced += res.RowsAffected
	}
	return replaced, nil
}

// Counts devuelve el número de filas por tabla del esquema estrella.
func (r *WarehouseRepo) Counts(ctx context.Context) (map[string]int64, error) {
	tables := []string{
		models.DimDocente{}.TableName(),
		models.DimAsignatura{}.TableName(),
		models.DimGrupo{}.TableName(),
		models.DimTiempo{}.TableName(),
		models.DimEspacio{}.TableName(),
		models.FactClase{}.TableName(),
		models.FactClaseSlot{}.TableName(),
	}
	out := make(map[string]int64, len(tables))
	db := r.db.WithContext(ctx)
	for _, t := range tables {
		var n int64
		if err := db.Table(t).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("error contando %s: %w", t, err)
		}
		out[t] = n
	}
	return out, nil
}

func factScopes(facts []domain.FactRow) []Scope {
	var out []Scope
	seen := map[Scope]bool{}
	for _, f := range facts {
		s := Scope{Periodo: f.Periodo, Plan: f.Plan}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func toFactModel(f domain.FactRow) models.FactClase {
	return models.FactClase{
		FkDocente:    f.DocenteID,
		FkAsignatura: f.AsignaturaID,
		FkGrupo:      f.GrupoID,
		FkTiempo:     f.TiempoID,
		FkEspacio:    f.EspacioID,
		Periodo:      f.Periodo,
		Plan:         f.Plan,
		Inicio:       f.Inicio.String(),
		Fin:          f.Fin.String(),
		Minutos:      f.Minutos,
	}
}

func chunks[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = defaultBatchSize
	}
	var out [][]T
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
