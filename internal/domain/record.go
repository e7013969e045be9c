package domain

// RawRecord es una fila de tabla tal como sale de la extracción del documento.
type RawRecord struct {
	NRC      string `json:"nrc"`
	Clave    string `json:"clave"`
	Materia  string `json:"materia"`
	Seccion  string `json:"seccion"`
	Dias     string `json:"dias"`
	Hora     string `json:"hora"`
	Profesor string `json:"profesor"`
	Salon    string `json:"salon"`
	Programa string `json:"programa"`
	Periodo  string `json:"periodo,omitempty"`
	Plan     string `json:"plan,omitempty"`
}

// ClassRecord es una clase normalizada en un único día, lista para la tabla de hechos.
type ClassRecord struct {
	NRC      int
	Clave    string
	Materia  string
	Programa string
	Seccion  string
	Cruzada  bool
	Profesor string
	Edificio string
	Salon    string
	Dia      Weekday
	Inicio   Clock
	Fin      Clock
	Minutos  int
	Periodo  string
	Plan     string
}

func (r ClassRecord) Space() Space {
	return Space{Edificio: r.Edificio, Salon: r.Salon}
}
