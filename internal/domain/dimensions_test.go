package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classRecord(profesor, clave, materia, programa string, nrc int, day string, space Space) ClassRecord {
	d, _ := LookupWeekday(day)
	return ClassRecord{
		NRC:      nrc,
		Clave:    clave,
		Materia:  materia,
		Programa: programa,
		Seccion:  "01",
		Profesor: profesor,
		Edificio: space.Edificio,
		Salon:    space.Salon,
		Dia:      d,
		Inicio:   NewClock(7, 0),
		Fin:      NewClock(8, 30),
		Minutos:  90,
		Periodo:  "OTOÑO 2025",
		Plan:     "SEMESTRAL",
	}
}

func TestResolveDeduplicatesByNaturalKey(t *testing.T) {
	a1 := Space{Edificio: "A1", Salon: "101"}
	records := []ClassRecord{
		classRecord("Lopez Juan", "CS101", "Programación", "ITI", 100, "L", a1),
		classRecord("Lopez Juan", "CS101", "Programación", "ITI", 100, "M", a1),
		classRecord("Lopez Juan", "CS101", "Programación", "ITI", 100, "V", a1),
		classRecord("Perez Ana", "MA200", "Cálculo", "ICC", 200, "L", Space{Edificio: "B2", Salon: "5"}),
	}

	dims := Resolve(records)

	assert.Equal(t, []string{"Lopez Juan", "Perez Ana"}, dims.Teachers)
	assert.Len(t, dims.Subjects, 2)
	assert.Len(t, dims.Groups, 2)
	assert.Equal(t, []string{"L", "M", "V"}, codes(dims.Days))
	assert.Equal(t, []Space{a1, {Edificio: "B2", Salon: "5"}}, dims.Spaces)
}

func TestResolveLastObservedWins(t *testing.T) {
	a1 := Space{Edificio: "A1", Salon: "101"}
	first := classRecord("Lopez Juan", "CS101", "Programacion I", "ITI", 100, "L", a1)
	second := classRecord("Lopez Juan", "CS101", "Programación I", "ICC", 100, "M", a1)
	second.Seccion = "02"
	second.Cruzada = true

	dims := Resolve([]ClassRecord{first, second})

	require.Len(t, dims.Subjects, 1)
	assert.Equal(t, "Programación I", dims.Subjects[0].Nombre)
	assert.Equal(t, "ICC/ITI", dims.Subjects[0].Programa)
	require.Len(t, dims.Groups, 1)
	assert.Equal(t, Group{NRC: 100, Seccion: "02", Cruzada: true}, dims.Groups[0])
}
