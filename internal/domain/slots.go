package domain

// SlotWidth es el ancho fijo de un slot en minutos.
const SlotWidth = 60

type Slot struct {
	Inicio Clock
	Fin    Clock
}

func (s Slot) Minutes() int { return s.Inicio.MinutesUntil(s.Fin) }

// ExpandSlots cubre [inicio, fin) con tramos de width minutos; el último
// tramo termina exactamente en fin y puede ser más corto.
func ExpandSlots(inicio, fin Clock, width int) []Slot {
	if width <= 0 {
		width = SlotWidth
	}
	if fin <= inicio {
		return nil
	}
	slots := make([]Slot, 0, (int(fin-inicio)+width-1)/width)
	for cur := inicio; cur < fin; cur += Clock(width) {
		end := cur + Clock(width)
		if end > fin {
			end = fin
		}
		slots = append(slots, Slot{Inicio: cur, Fin: end})
	}
	return slots
}
