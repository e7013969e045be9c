package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
	"github.com/jovas-007/Olap-practica-jovas/internal/repository"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/source"
)

var ErrInvalidParams = errors.New("parámetros de consulta inválidos")

// StagingTarget es la vista previa del CSV de staging en lugar de una tabla.
const StagingTarget = "staging"

type Repository interface {
	TeacherSchedule(ctx context.Context, scope repository.Scope, docente string) ([]repository.ScheduleRow, error)
	SubjectTeachersByClave(ctx context.Context, prefix string) ([]string, error)
	SubjectTeachersByName(ctx context.Context, text string) ([]string, error)
	TeachersInBuilding(ctx context.Context, f repository.PresenceFilter) ([]repository.PresenceRow, error)
	Teachers(ctx context.Context) ([]string, error)
	Subjects(ctx context.Context) ([]repository.SubjectOption, error)
	Buildings(ctx context.Context) ([]string, error)
	Hours(ctx context.Context) ([]string, error)
	Preview(ctx context.Context, target string) ([]string, [][]string, error)
}

type SlotStatusReader interface {
	Status(ctx context.Context) (repository.SlotStatus, error)
}

type Options struct {
	Teachers  []string
	Subjects  []repository.SubjectOption
	Buildings []string
	Hours     []string
}

type Service struct {
	repo        Repository
	slots       SlotStatusReader
	scope       repository.Scope
	stagingPath string
	log         *zap.Logger
}

func NewService(repo Repository, slots SlotStatusReader, scope repository.Scope, stagingPath string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, slots: slots, scope: scope, stagingPath: stagingPath, log: log}
}

func (s *Service) Scope() repository.Scope { return s.scope }

// TeacherSchedule busca por coincidencia parcial del nombre del docente.
func (s *Service) TeacherSchedule(ctx context.Context, docente string) ([]repository.ScheduleRow, error) {
	docente = strings.Join(strings.Fields(docente), " ")
	if docente == "" {
		return nil, fmt.Errorf("%w: debe seleccionar un docente", ErrInvalidParams)
	}
	s.log.Info("consulta horario_docente", zap.String("docente", docente))
	return s.repo.TeacherSchedule(ctx, s.scope, docente)
}

// SubjectTeachers usa la clave como prefijo si viene; si no, busca el texto
// dentro del nombre de la asignatura.
func (s *Service) SubjectTeachers(ctx context.Context, clave, texto string) ([]string, error) {
	clave = strings.ToUpper(strings.TrimSpace(clave))
	texto = strings.Join(strings.Fields(texto), " ")
	s.log.Info("consulta docentes_por_materia", zap.String("clave", clave), zap.String("texto", texto))

	switch {
	case clave != "":
		return s.repo.SubjectTeachersByClave(ctx, clave)
	case texto != "":
		return s.repo.SubjectTeachersByName(ctx, texto)
	default:
		return nil, fmt.Errorf("%w: indique una clave o un texto de materia", ErrInvalidParams)
	}
}

// TeachersInBuilding acepta la hora como "9", "0900", "09:00" o "09:00:00".
func (s *Service) TeachersInBuilding(ctx context.Context, edificio, salon, hora string, useSlots bool) ([]repository.PresenceRow, error) {
	edificio = strings.TrimSpace(edificio)
	if edificio == "" {
		return nil, fmt.Errorf("%w: debe indicar un edificio", ErrInvalidParams)
	}
	h, err := NormalizeHour(hora)
	if err != nil {
		return nil, err
	}
	s.log.Info("consulta docentes_en_edificio",
		zap.String("edificio", edificio),
		zap.String("salon", salon),
		zap.String("hora", h),
		zap.Bool("slots", useSlots))

	return s.repo.TeachersInBuilding(ctx, repository.PresenceFilter{
		Edificio: edificio,
		Salon:    strings.TrimSpace(salon),
		Hora:     h,
		Slots:    useSlots,
	})
}

// NormalizeHour deja la hora en el formato "HH:MM:SS" de las columnas TIME.
func NormalizeHour(value string) (string, error) {
	value = strings.TrimSpace(value)
	if len(value) > 0 && len(value) <= 2 && !strings.Contains(value, ":") {
		value += ":00"
	}
	c, err := domain.ParseClock(value)
	if err != nil {
		return "", fmt.Errorf("%w: la hora debe tener formato HH:MM", ErrInvalidParams)
	}
	return c.String(), nil
}

func (s *Service) Options(ctx context.Context) (Options, error) {
	var (
		opts Options
		err  error
	)
	if opts.Teachers, err = s.repo.Teachers(ctx); err != nil {
		return opts, err
	}
	if opts.Subjects, err = s.repo.Subjects(ctx); err != nil {
		return opts, err
	}
	if opts.Buildings, err = s.repo.Buildings(ctx); err != nil {
		return opts, err
	}
	if opts.Hours, err = s.repo.Hours(ctx); err != nil {
		return opts, err
	}
	for i, h := range opts.Hours {
		if c, err := domain.ParseClock(h); err == nil {
			opts.Hours[i] = c.Short()
		}
	}
	return opts, nil
}

// SlotStatus devuelve el estado de la vista de slots; sin lector se reporta
// como no disponible.
func (s *Service) SlotStatus(ctx context.Context) (repository.SlotStatus, error) {
	if s.slots == nil {
		return repository.SlotStatus{}, nil
	}
	return s.slots.Status(ctx)
}

func (s *Service) Preview(ctx context.Context, target string) ([]string, [][]string, error) {
	if target != StagingTarget {
		return s.repo.Preview(ctx, target)
	}

	records, err := source.ReadStagingFile(s.stagingPath)
	if err != nil {
		return nil, nil, err
	}
	var rows [][]string
	for i, r := range records {
		if i == repository.PreviewLimit {
			break
		}
		rows = append(rows, []string{r.NRC, r.Clave, r.Materia, r.Seccion, r.Dias, r.Hora, r.Profesor, r.Salon, r.Programa, r.Periodo, r.Plan})
	}
	return source.StagingColumns, rows, nil
}
