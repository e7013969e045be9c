package domain

import (
	"fmt"
	"strings"
	"unicode"
)

type Weekday struct {
	Code    string
	Ordinal int
	Name    string
}

var weekdays = []Weekday{
	{Code: "L", Ordinal: 1, Name: "Lunes"},
	{Code: "A", Ordinal: 2, Name: "Martes"},
	{Code: "M", Ordinal: 3, Name: "Miércoles"},
	{Code: "J", Ordinal: 4, Name: "Jueves"},
	{Code: "V", Ordinal: 5, Name: "Viernes"},
	{Code: "S", Ordinal: 6, Name: "Sábado"},
}

// Weekdays devuelve los seis días de clase en orden.
func Weekdays() []Weekday {
	out := make([]Weekday, len(weekdays))
	copy(out, weekdays)
	return out
}

func LookupWeekday(code string) (Weekday, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, d := range weekdays {
		if d.Code == code {
			return d, true
		}
	}
	return Weekday{}, false
}

func isDaySeparator(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune("/,-.;", r)
}

// ExplodeWeekdays convierte "LMV", "L/M/V" o "L, M, V" en días individuales.
// Los marcadores repetidos se cuentan una sola vez y se conserva el orden de aparición.
func ExplodeWeekdays(field string) ([]Weekday, error) {
	var (
		out  []Weekday
		seen = map[string]bool{}
	)
	for _, r := range field {
		if isDaySeparator(r) {
			continue
		}
		day, ok := LookupWeekday(string(r))
		if !ok {
			return nil, fmt.Errorf("%w: %q en %q", ErrInvalidWeekday, string(r), field)
		}
		if seen[day.Code] {
			continue
		}
		seen[day.Code] = true
		out = append(out, day)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: sin días en %q", ErrMalformedRecord, field)
	}
	return out, nil
}
