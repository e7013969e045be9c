package etl

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/jovas-007/Olap-practica-jovas/internal/config"
	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
)

// Motivos de rechazo usados en logs y métricas
const (
	ReasonMalformed  = "malformed_record"
	ReasonBadWeekday = "invalid_weekday"
)

// Stats acumula lo que pasó durante una normalización.
type Stats struct {
	Read     int
	Emitted  int
	Rejected map[string]int
}

func NewStats() *Stats {
	return &Stats{Rejected: map[string]int{}}
}

func (s *Stats) TotalRejected() int {
	n := 0
	for _, v := range s.Rejected {
		n += v
	}
	return n
}

type Normalizer struct {
	periodo  string
	plan     string
	location *regexp.Regexp
	edificio int
	salon    int
	log      *zap.Logger
	metrics  *Metrics
}

func NewNormalizer(cfg *config.Settings, log *zap.Logger, metrics *Metrics) (*Normalizer, error) {
	re, err := regexp.Compile(cfg.LocationPattern)
	if err != nil {
		return nil, fmt.Errorf("location_pattern inválido: %w", err)
	}
	n := &Normalizer{
		periodo:  cfg.Periodo,
		plan:     cfg.Plan,
		location: re,
		edificio: re.SubexpIndex("edificio"),
		salon:    re.SubexpIndex("salon"),
		log:      log,
		metrics:  metrics,
	}
	if n.edificio < 0 || n.salon < 0 {
		return nil, errors.New("location_pattern debe definir los grupos edificio y salon")
	}
	if n.log == nil {
		n.log = zap.NewNop()
	}
	return n, nil
}

// Normalize transforma los registros crudos en registros canónicos de forma
// perezosa. Se puede recorrer más de una vez; cada recorrido suma en stats.
func (n *Normalizer) Normalize(src iter.Seq[domain.RawRecord], stats *Stats) iter.Seq[domain.ClassRecord] {
	return func(yield func(domain.ClassRecord) bool) {
		for raw := range src {
			if stats != nil {
				stats.Read++
			}
			records, err := n.NormalizeRecord(raw)
			if err != nil {
				n.reject(raw, err, stats)
				continue
			}
			for _, r := range records {
				if stats != nil {
					stats.Emitted++
				}
				if !yield(r) {
					return
				}
			}
		}
	}
}

func (n *Normalizer) reject(raw domain.RawRecord, err error, stats *Stats) {
	reason := ReasonMalformed
	if errors.Is(err, domain.ErrInvalidWeekday) {
		reason = ReasonBadWeekday
	}
	if stats != nil {
		stats.Rejected[reason]++
	}
	if n.metrics != nil {
		n.metrics.Rejected.WithLabelValues(reason).Inc()
	}
	n.log.Warn("registro rechazado",
		zap.String("reason", reason),
		zap.String("nrc", raw.NRC),
		zap.String("clave", raw.Clave),
		zap.Error(err))
}

// NormalizeRecord produce un registro canónico por cada día del registro crudo.
func (n *Normalizer) NormalizeRecord(raw domain.RawRecord) ([]domain.ClassRecord, error) {
	profesor := NormalizeName(raw.Profesor)
	if profesor == "" {
		return nil, fmt.Errorf("%w: profesor vacío", domain.ErrMalformedRecord)
	}

	clave := strings.ToUpper(collapse(raw.Clave))
	if clave == "" {
		return nil, fmt.Errorf("%w: clave vacía", domain.ErrMalformedRecord)
	}

	nrc, err := strconv.Atoi(collapse(raw.NRC))
	if err != nil || nrc <= 0 {
		return nil, fmt.Errorf("%w: nrc %q", domain.ErrMalformedRecord, raw.NRC)
	}

	inicio, fin, err := domain.ParseTimeRange(raw.Hora)
	if err != nil {
		return nil, err
	}

	days, err := domain.ExplodeWeekdays(raw.Dias)
	if err != nil {
		return nil, err
	}

	materia := collapse(raw.Materia)
	edificio, salon := n.parseLocation(raw.Salon)

	minutos := inicio.MinutesUntil(fin)
	if minutos <= 0 {
		return nil, fmt.Errorf("%w: duración %d min en %q", domain.ErrMalformedRecord, minutos, raw.Hora)
	}

	periodo, plan := collapse(raw.Periodo), collapse(raw.Plan)
	if periodo == "" {
		periodo = n.periodo
	}
	if plan == "" {
		plan = n.plan
	}

	base := domain.ClassRecord{
		NRC:      nrc,
		Clave:    clave,
		Materia:  materia,
		Programa: strings.ToUpper(collapse(raw.Programa)),
		Seccion:  strings.ToUpper(collapse(raw.Seccion)),
		Cruzada:  strings.Contains(strings.ToUpper(materia), "CRUZADA"),
		Profesor: profesor,
		Edificio: edificio,
		Salon:    salon,
		Inicio:   inicio,
		Fin:      fin,
		Minutos:  minutos,
		Periodo:  periodo,
		Plan:     plan,
	}

	out := make([]domain.ClassRecord, 0, len(days))
	for _, d := range days {
		r := base
		r.Dia = d
		out = append(out, r)
	}
	return out, nil
}

// parseLocation separa "A1/101" en edificio y salón. Un texto que no coincide
// se conserva completo como edificio con salón vacío.
func (n *Normalizer) parseLocation(value string) (string, string) {
	value = collapse(value)
	m := n.location.FindStringSubmatch(value)
	if m == nil {
		return value, ""
	}
	return collapse(m[n.edificio]), collapse(m[n.salon])
}

// NormalizeName deja los nombres de docente en una forma única:
// espacios colapsados, NFC y mayúscula inicial por palabra.
func NormalizeName(value string) string {
	value = collapse(norm.NFC.String(value))
	if value == "" {
		return ""
	}
	return cases.Title(language.Spanish).String(value)
}

func collapse(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
