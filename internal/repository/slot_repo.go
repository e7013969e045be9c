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

	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
	"github.com/jovas-007/Olap-practica-jovas/internal/models"
)

// ErrSlotsUnavailable indica que la tabla de slots no existe todavía.
var ErrSlotsUnavailable = errors.New("vista de slots no disponible, ejecute 'slots refresh'")

type SlotRefresh struct {
	Facts int
	Slots int
}

type SlotStatus struct {
	Available   bool
	Rows        int64
	LastLoad    *time.Time
	LastRefresh *time.Time
	Stale       bool
}

type SlotRepo struct {
	db        *gorm.DB
	log       *zap.Logger
	width     int
	batchSize int
}

func NewSlotRepo(db *gorm.DB, log *zap.Logger, width, batchSize int) *SlotRepo {
	if width <= 0 {
		width = domain.SlotWidth
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SlotRepo{db: db, log: log, width: width, batchSize: batchSize}
}

type factTimes struct {
	ID           int
	FkDocente    int
	FkAsignatura int
	FkGrupo      int
	FkTiempo     int
	FkEspacio    int
	Periodo      string
	Plan         string
	Inicio       string
	Fin          string
}

// Refresh recalcula fact_clase_slot a partir de fact_clase completa.
func (r *SlotRepo) Refresh(ctx context.Context) (SlotRefresh, error) {
	db := r.db.WithContext(ctx)
	if !db.Migrator().HasTable(&models.FactClaseSlot{}) {
		return SlotRefresh{}, ErrSlotsUnavailable
	}

	var out SlotRefresh
	started := time.Now().UTC()

	err := db.Transaction(func(tx *gorm.DB) error {
		var facts []factTimes
		err := tx.Model(&models.FactClase{}).
			Select(`id, fk_docente, fk_asignatura, fk_grupo, fk_tiempo, fk_espacio, periodo, plan,
				CAST(inicio AS TEXT) AS inicio, CAST(fin AS TEXT) AS fin`).
			Order("id").
			Scan(&facts).Error
		if err != nil {
			return fmt.Errorf("error leyendo hechos: %w", err)
		}

		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.FactClaseSlot{}).Error; err != nil {
			return fmt.Errorf("error limpiando slots: %w", err)
		}

		rows := make([]models.FactClaseSlot, 0, len(facts)*2)
		for _, f := range facts {
			inicio, err := domain.ParseClock(f.Inicio)
			if err != nil {
				return fmt.Errorf("hecho %d: %w", f.ID, err)
			}
			fin, err := domain.ParseClock(f.Fin)
			if err != nil {
				return fmt.Errorf("hecho %d: %w", f.ID, err)
			}
			for _, s := range domain.ExpandSlots(inicio, fin, r.width) {
				rows = append(rows, models.FactClaseSlot{
					FkFact:       f.ID,
					FkDocente:    f.FkDocente,
					FkAsignatura: f.FkAsignatura,
					FkGrupo:      f.FkGrupo,
					FkTiempo:     f.FkTiempo,
					FkEspacio:    f.FkEspacio,
					Periodo:      f.Periodo,
					Plan:         f.Plan,
					SlotInicio:   s.Inicio.String(),
					SlotFin:      s.Fin.String(),
					Minutos:      s.Minutes(),
				})
			}
		}
		if len(rows) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(&rows, r.batchSize).Error; err != nil {
				return fmt.Errorf("error insertando slots: %w", err)
			}
		}

		run := models.EtlRun{
			ID:           uuid.New(),
			Tipo:         models.RunSlots,
			Hechos:       len(facts),
			Registros:    len(rows),
			IniciadoEn:   started,
			FinalizadoEn: time.Now().UTC(),
		}
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("error registrando recálculo: %w", err)
		}

		out = SlotRefresh{Facts: len(facts), Slots: len(rows)}
		return nil
	})
	if err != nil {
		return SlotRefresh{}, err
	}

	r.log.Info("slots recalculados", zap.Int("hechos", out.Facts), zap.Int("slots", out.Slots))
	return out, nil
}

// Status informa si la vista de slots existe y si quedó desactualizada
// respecto de la última carga.
func (r *SlotRepo) Status(ctx context.Context) (SlotStatus, error) {
	db := r.db.WithContext(ctx)
	var st SlotStatus
	if !db.Migrator().HasTable(&models.FactClaseSlot{}) {
		return st, nil
	}
	st.Available = true

	if err := db.Model(&models.FactClaseSlot{}).Count(&st.Rows).Error; err != nil {
		return st, fmt.Errorf("error contando slots: %w", err)
	}

	var err error
	if st.LastLoad, err = r.lastRun(db, models.RunLoad); err != nil {
		return st, err
	}
	if st.LastRefresh, err = r.lastRun(db, models.RunSlots); err != nil {
		return st, err
	}
	switch {
	case st.LastLoad == nil:
		st.Stale = false
	case st.LastRefresh == nil:
		st.Stale = true
	default:
		st.Stale = st.LastLoad.After(*st.LastRefresh)
	}
	return st, nil
}

func (r *SlotRepo) lastRun(db *gorm.DB, kind models.RunKind) (*time.Time, error) {
	var run models.EtlRun
	err := db.Where("tipo = ?", kind).Order("finalizado_en DESC").Limit(1).Find(&run).Error
	if err != nil {
		return nil, fmt.Errorf("error leyendo bitácora de corridas: %w", err)
	}
	if run.ID == uuid.Nil {
		return nil, nil
	}
	t := run.FinalizadoEn
	return &t, nil
}
