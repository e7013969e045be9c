package domain

import (
	"sort"
	"strings"
)

type Subject struct {
	Clave    string
	Nombre   string
	Programa string
}

type Group struct {
	NRC     int
	Seccion string
	Cruzada bool
}

type Space struct {
	Edificio string
	Salon    string
}

// Dimensions agrupa las entidades distintas observadas en una corrida,
// en orden de primera aparición.
type Dimensions struct {
	Teachers []string
	Subjects []Subject
	Groups   []Group
	Days     []Weekday
	Spaces   []Space
}

// Resolve deduplica los registros canónicos por llave natural.
// Para atributos inconsistentes bajo la misma llave gana el último observado;
// los programas de una misma clave se acumulan como "ICC/ITI".
func Resolve(records []ClassRecord) Dimensions {
	var (
		dims       Dimensions
		teacherIdx = map[string]int{}
		subjectIdx = map[string]int{}
		programs   = map[string]map[string]bool{}
		groupIdx   = map[int]int{}
		dayIdx     = map[string]int{}
		spaceIdx   = map[Space]int{}
	)

	for _, r := range records {
		if _, ok := teacherIdx[r.Profesor]; !ok {
			teacherIdx[r.Profesor] = len(dims.Teachers)
			dims.Teachers = append(dims.Teachers, r.Profesor)
		}

		if _, ok := programs[r.Clave]; !ok {
			programs[r.Clave] = map[string]bool{}
		}
		for _, p := range splitPrograms(r.Programa) {
			programs[r.Clave][p] = true
		}
		subject := Subject{Clave: r.Clave, Nombre: r.Materia, Programa: joinPrograms(programs[r.Clave])}
		if i, ok := subjectIdx[r.Clave]; ok {
			dims.Subjects[i] = subject
		} else {
			subjectIdx[r.Clave] = len(dims.Subjects)
			dims.Subjects = append(dims.Subjects, subject)
		}

		group := Group{NRC: r.NRC, Seccion: r.Seccion, Cruzada: r.Cruzada}
		if i, ok := groupIdx[r.NRC]; ok {
			dims.Groups[i] = group
		} else {
			groupIdx[r.NRC] = len(dims.Groups)
			dims.Groups = append(dims.Groups, group)
		}

		if _, ok := dayIdx[r.Dia.Code]; !ok {
			dayIdx[r.Dia.Code] = len(dims.Days)
			dims.Days = append(dims.Days, r.Dia)
		}

		if _, ok := spaceIdx[r.Space()]; !ok {
			spaceIdx[r.Space()] = len(dims.Spaces)
			dims.Spaces = append(dims.Spaces, r.Space())
		}
	}
	return dims
}

func splitPrograms(value string) []string {
	var out []string
	for _, p := range strings.Split(value, "/") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinPrograms(set map[string]bool) string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return strings.Join(out, "/")
}

// KeyMaps relaciona cada llave natural con el id sustituto del almacén.
type KeyMaps struct {
	Teachers map[string]int
	Subjects map[string]int
	Groups   map[int]int
	Days     map[string]int
	Spaces   map[Space]int
}

func NewKeyMaps() KeyMaps {
	return KeyMaps{
		Teachers: map[string]int{},
		Subjects: map[string]int{},
		Groups:   map[int]int{},
		Days:     map[string]int{},
		Spaces:   map[Space]int{},
	}
}
