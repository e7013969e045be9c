package etl

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
	"github.com/jovas-007/Olap-practica-jovas/internal/repository"
)

var (
	ErrRunInProgress = errors.New("ya hay una corrida ETL en curso")
	ErrNoRecords     = errors.New("la normalización no produjo registros válidos")
)

type Warehouse interface {
	Ping(ctx context.Context) error
	Load(ctx context.Context, req repository.LoadRequest) (repository.LoadResult, error)
}

type SlotRefresher interface {
	Refresh(ctx context.Context) (repository.SlotRefresh, error)
}

// Notifier recibe el reporte de cada corrida terminada con éxito.
type Notifier interface {
	RunCompleted(ctx context.Context, report RunReport) error
}

type RunOptions struct {
	Source       string
	RefreshSlots bool
}

type RunReport struct {
	RunID      uuid.UUID
	Source     string
	Read       int
	Emitted    int
	Rejected   map[string]int
	Teachers   int
	Subjects   int
	Groups     int
	Spaces     int
	Facts      int
	Replaced   int64
	Slots      *repository.SlotRefresh
	StartedAt  time.Time
	FinishedAt time.Time
}

type EtlService struct {
	normalizer *Normalizer
	warehouse  Warehouse
	slots      SlotRefresher
	notifier   Notifier
	metrics    *Metrics
	log        *zap.Logger
	running    sync.Mutex
}

func NewEtlService(n *Normalizer, w Warehouse, slots SlotRefresher, notifier Notifier, metrics *Metrics, log *zap.Logger) *EtlService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EtlService{
		normalizer: n,
		warehouse:  w,
		slots:      slots,
		notifier:   notifier,
		metrics:    metrics,
		log:        log,
	}
}

// Run ejecuta una corrida completa: normaliza todo el origen, resuelve
// dimensiones y carga en una transacción. Solo una corrida a la vez.
func (s *EtlService) Run(ctx context.Context, src iter.Seq[domain.RawRecord], opts RunOptions) (RunReport, error) {
	if !s.running.TryLock() {
		return RunReport{}, ErrRunInProgress
	}
	defer s.running.Unlock()

	report := RunReport{RunID: uuid.New(), Source: opts.Source, StartedAt: time.Now().UTC()}
	log := s.log.With(zap.String("run_id", report.RunID.String()), zap.String("fuente", opts.Source))

	report, err := s.run(ctx, src, opts, report, log)
	s.observe(report, err)
	if err != nil {
		log.Error("corrida ETL fallida", zap.Error(err))
		return report, err
	}

	log.Info("corrida ETL completada",
		zap.Int("leidos", report.Read),
		zap.Int("emitidos", report.Emitted),
		zap.Any("rechazados", report.Rejected),
		zap.Int("hechos", report.Facts),
		zap.Duration("duracion", report.FinishedAt.Sub(report.StartedAt)))

	if s.notifier != nil {
		if err := s.notifier.RunCompleted(ctx, report); err != nil {
			log.Warn("no se pudo publicar el fin de corrida", zap.Error(err))
		}
	}
	return report, nil
}

func (s *EtlService) run(ctx context.Context, src iter.Seq[domain.RawRecord], opts RunOptions, report RunReport, log *zap.Logger) (RunReport, error) {
	if err := s.warehouse.Ping(ctx); err != nil {
		return report, err
	}

	stats := NewStats()
	records := slices.Collect(s.normalizer.Normalize(src, stats))
	report.Read, report.Emitted, report.Rejected = stats.Read, stats.Emitted, stats.Rejected
	if len(records) == 0 {
		return report, fmt.Errorf("%w: %d leídos, %d rechazados", ErrNoRecords, stats.Read, stats.TotalRejected())
	}

	dims := domain.Resolve(records)
	report.Teachers, report.Subjects = len(dims.Teachers), len(dims.Subjects)
	report.Groups, report.Spaces = len(dims.Groups), len(dims.Spaces)
	log.Debug("dimensiones resueltas",
		zap.Int("docentes", report.Teachers),
		zap.Int("asignaturas", report.Subjects),
		zap.Int("grupos", report.Groups),
		zap.Int("espacios", report.Spaces))

	res, err := s.warehouse.Load(ctx, repository.LoadRequest{
		RunID:      report.RunID,
		Source:     opts.Source,
		Records:    records,
		Dims:       dims,
		Read:       stats.Read,
		Rejected:   stats.TotalRejected(),
		StartedAt:  report.StartedAt,
		FinishedAt: time.Now().UTC(),
	})
	if err != nil {
		return report, err
	}
	report.Facts, report.Replaced = res.Facts, res.Replaced

	if opts.RefreshSlots && s.slots != nil {
		refresh, err := s.slots.Refresh(ctx)
		if err != nil {
			return report, fmt.Errorf("carga aplicada pero falló el recálculo de slots: %w", err)
		}
		report.Slots = &refresh
	}

	report.FinishedAt = time.Now().UTC()
	return report, nil
}

func (s *EtlService) observe(report RunReport, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.Runs.WithLabelValues(status).Inc()
	s.metrics.Records.Add(float64(report.Read))
	s.metrics.Facts.Add(float64(report.Facts))
	if !report.FinishedAt.IsZero() {
		s.metrics.Duration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	}
}
