package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Clock es una hora del día expresada en minutos desde medianoche.
type Clock int

const minutesPerDay = 24 * 60

var clockPattern = regexp.MustCompile(`^(\d{1,2}):?(\d{2})(?::(\d{2}))?$`)

func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock acepta "0900", "900", "09:00", "9:00" y "09:00:00".
func ParseClock(value string) (Clock, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, fmt.Errorf("%w: hora %q no reconocida", ErrMalformedRecord, value)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, fmt.Errorf("%w: hora %q fuera de rango", ErrMalformedRecord, value)
	}
	if m[3] != "" {
		if sec, _ := strconv.Atoi(m[3]); sec > 59 {
			return 0, fmt.Errorf("%w: hora %q fuera de rango", ErrMalformedRecord, value)
		}
	}
	return NewClock(hour, minute), nil
}

// ParseTimeRange separa un texto "inicio-fin" en dos horas.
func ParseTimeRange(value string) (Clock, Clock, error) {
	cleaned := strings.NewReplacer("–", "-", "—", "-", " ", "").Replace(value)
	parts := strings.Split(cleaned, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: rango horario %q no reconocido", ErrMalformedRecord, value)
	}
	start, err := ParseClock(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) Valid() bool { return c >= 0 && c < minutesPerDay }

// String devuelve el formato HH:MM:SS usado por las columnas TIME del almacén.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:00", c.Hour(), c.Minute())
}

// Short devuelve HH:MM.
func (c Clock) Short() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MinutesUntil devuelve end - c en minutos.
func (c Clock) MinutesUntil(end Clock) int {
	return int(end - c)
}
