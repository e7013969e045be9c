package query

import (
	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
	"github.com/jovas-007/Olap-practica-jovas/internal/repository"
)

// Entry es una clase dentro de una celda del calendario semanal.
type Entry struct {
	Clave   string
	Materia string
	Espacio string
	Inicio  string
	Fin     string
}

type GridRow struct {
	Label string
	Cells [][]Entry
}

type Grid struct {
	Days []domain.Weekday
	Rows []GridRow
}

// WeeklyGrid acomoda el horario de un docente en filas de una hora por
// columnas de día. Una clase aparece en cada fila que toca.
func WeeklyGrid(rows []repository.ScheduleRow) Grid {
	grid := Grid{Days: domain.Weekdays()}
	if len(rows) == 0 {
		return grid
	}

	type event struct {
		entry  Entry
		day    int
		inicio domain.Clock
		fin    domain.Clock
	}
	col := make(map[string]int, len(grid.Days))
	for i, d := range grid.Days {
		col[d.Code] = i
	}

	var (
		events   []event
		earliest domain.Clock = -1
		latest   domain.Clock
	)
	for _, r := range rows {
		day, ok := col[r.DiaCodigo]
		if !ok {
			continue
		}
		inicio, err := domain.ParseClock(r.Inicio)
		if err != nil {
			continue
		}
		fin, err := domain.ParseClock(r.Fin)
		if err != nil || fin <= inicio {
			fin = inicio + domain.Clock(max(r.Minutos, domain.SlotWidth))
		}
		events = append(events, event{
			entry: Entry{
				Clave:   r.Clave,
				Materia: r.Materia,
				Espacio: r.Edificio + "/" + r.Salon,
				Inicio:  inicio.Short(),
				Fin:     fin.Short(),
			},
			day:    day,
			inicio: inicio,
			fin:    fin,
		})
		if earliest < 0 || inicio < earliest {
			earliest = inicio
		}
		if fin > latest {
			latest = fin
		}
	}
	if len(events) == 0 {
		return grid
	}

	start := domain.NewClock(earliest.Hour(), 0)
	end := domain.NewClock(latest.Hour(), 0)
	if latest.Minute() > 0 {
		end += domain.SlotWidth
	}

	for cur := start; cur < end; cur += domain.SlotWidth {
		next := cur + domain.SlotWidth
		row := GridRow{
			Label: cur.Short() + " - " + (next - 1).Short(),
			Cells: make([][]Entry, len(grid.Days)),
		}
		for _, e := range events {
			if e.fin <= cur || e.inicio >= next {
				continue
			}
			row.Cells[e.day] = append(row.Cells[e.day], e.entry)
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}
