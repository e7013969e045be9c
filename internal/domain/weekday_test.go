package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(days []Weekday) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Code)
	}
	return out
}

func TestExplodeWeekdays(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"LMV", []string{"L", "M", "V"}},
		{"L/M/V", []string{"L", "M", "V"}},
		{"a, j", []string{"A", "J"}},
		{"S", []string{"S"}},
		{"LLM", []string{"L", "M"}},
	}
	for _, tt := range tests {
		days, err := ExplodeWeekdays(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, codes(days), tt.in)
	}
}

func TestExplodeWeekdaysRejects(t *testing.T) {
	_, err := ExplodeWeekdays("LMX")
	assert.ErrorIs(t, err, ErrInvalidWeekday)

	_, err = ExplodeWeekdays("D")
	assert.ErrorIs(t, err, ErrInvalidWeekday)

	_, err = ExplodeWeekdays(" / ")
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestWeekdayOrdinals(t *testing.T) {
	for i, d := range Weekdays() {
		assert.Equal(t, i+1, d.Ordinal)
	}
	d, ok := LookupWeekday("a")
	require.True(t, ok)
	assert.Equal(t, 2, d.Ordinal)
}
