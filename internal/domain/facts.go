package domain

import "fmt"

// FactRow es una fila de fact_clase con las llaves ya sustituidas.
type FactRow struct {
	DocenteID    int
	AsignaturaID int
	GrupoID      int
	TiempoID     int
	EspacioID    int
	Periodo      string
	Plan         string
	Inicio       Clock
	Fin          Clock
	Minutos      int
}

// BuildFacts produce una fila de hechos por registro canónico. Una llave sin id
// en keys es una violación de integridad y detiene la construcción completa.
// Registros que generan exactamente la misma tupla se emiten una sola vez.
func BuildFacts(records []ClassRecord, keys KeyMaps) ([]FactRow, error) {
	facts := make([]FactRow, 0, len(records))
	seen := make(map[FactRow]bool, len(records))

	for _, r := range records {
		docente, ok := keys.Teachers[r.Profesor]
		if !ok {
			return nil, fmt.Errorf("%w: docente %q", ErrDimensionResolution, r.Profesor)
		}
		asignatura, ok := keys.Subjects[r.Clave]
		if !ok {
			return nil, fmt.Errorf("%w: asignatura %q", ErrDimensionResolution, r.Clave)
		}
		grupo, ok := keys.Groups[r.NRC]
		if !ok {
			return nil, fmt.Errorf("%w: grupo %d", ErrDimensionResolution, r.NRC)
		}
		tiempo, ok := keys.Days[r.Dia.Code]
		if !ok {
			return nil, fmt.Errorf("%w: día %q", ErrDimensionResolution, r.Dia.Code)
		}
		espacio, ok := keys.Spaces[r.Space()]
		if !ok {
			return nil, fmt.Errorf("%w: espacio %s/%s", ErrDimensionResolution, r.Edificio, r.Salon)
		}

		fact := FactRow{
			DocenteID:    docente,
			AsignaturaID: asignatura,
			GrupoID:      grupo,
			TiempoID:     tiempo,
			EspacioID:    espacio,
			Periodo:      r.Periodo,
			Plan:         r.Plan,
			Inicio:       r.Inicio,
			Fin:          r.Fin,
			Minutos:      r.Minutos,
		}
		if seen[fact] {
			continue
		}
		seen[fact] = true
		facts = append(facts, fact)
	}
	return facts, nil
}
