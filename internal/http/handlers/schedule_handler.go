package handlers

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/repository"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/query"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/source"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

const slotsGuidance = "La tabla de slots no existe. Ejecute \"horarios migrate\" y luego \"horarios slots refresh\"."

type QueryService interface {
	Scope() repository.Scope
	TeacherSchedule(ctx context.Context, docente string) ([]repository.ScheduleRow, error)
	SubjectTeachers(ctx context.Context, clave, texto string) ([]string, error)
	TeachersInBuilding(ctx context.Context, edificio, salon, hora string, useSlots bool) ([]repository.PresenceRow, error)
	Options(ctx context.Context) (query.Options, error)
	SlotStatus(ctx context.Context) (repository.SlotStatus, error)
	Preview(ctx context.Context, target string) ([]string, [][]string, error)
}

type ScheduleHandler struct {
	Service QueryService
	Log     *zap.Logger
}

type queryForm struct {
	Consulta string
	Docente  string
	Clave    string
	Texto    string
	Edificio string
	Salon    string
	Hora     string
	Slots    bool
}

type pageData struct {
	Scope    repository.Scope
	Targets  []string
	Options  query.Options
	Form     queryForm
	Error    string
	Warning  string
	Guidance string

	OptionsError string

	Schedule []repository.ScheduleRow
	Grid     *query.Grid
	Teachers []string
	Presence []repository.PresenceRow

	Target  string
	Headers []string
	Rows    [][]string
}

func previewTargets() []string {
	return append(repository.PreviewTargets(), query.StagingTarget)
}

func (h *ScheduleHandler) newPage(ctx context.Context) *pageData {
	p := &pageData{
		Scope:   h.Service.Scope(),
		Targets: previewTargets(),
		Form:    queryForm{Consulta: "docente"},
	}
	opts, err := h.Service.Options(ctx)
	if err != nil {
		h.Log.Warn("no se pudieron cargar las opciones del formulario", zap.Error(err))
		p.OptionsError = "No se pudieron cargar las opciones del formulario: " + err.Error()
		return p
	}
	p.Options = opts
	return p
}

// Index muestra el formulario de consultas.
func (h *ScheduleHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	h.render(w, "index.html", http.StatusOK, h.newPage(ctx))
}

// Run ejecuta la consulta elegida en el formulario.
func (h *ScheduleHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error al procesar el formulario: "+err.Error(), http.StatusBadRequest)
		return
	}
	p := h.newPage(ctx)
	p.Form = queryForm{
		Consulta: r.FormValue("consulta"),
		Docente:  r.FormValue("docente"),
		Clave:    r.FormValue("clave"),
		Texto:    r.FormValue("texto"),
		Edificio: r.FormValue("edificio"),
		Salon:    r.FormValue("salon"),
		Hora:     r.FormValue("hora"),
		Slots:    r.FormValue("slots") != "",
	}

	var (
		err   error
		empty bool
	)
	switch p.Form.Consulta {
	case "docente":
		p.Schedule, err = h.Service.TeacherSchedule(ctx, p.Form.Docente)
		if len(p.Schedule) > 0 {
			grid := query.WeeklyGrid(p.Schedule)
			p.Grid = &grid
		}
		empty = len(p.Schedule) == 0
	case "materia":
		p.Teachers, err = h.Service.SubjectTeachers(ctx, p.Form.Clave, p.Form.Texto)
		empty = len(p.Teachers) == 0
	case "edificio":
		p.Presence, err = h.Service.TeachersInBuilding(ctx, p.Form.Edificio, p.Form.Salon, p.Form.Hora, p.Form.Slots)
		empty = len(p.Presence) == 0
		if err == nil && p.Form.Slots {
			h.checkSlots(ctx, p)
		}
	default:
		err = query.ErrInvalidParams
	}

	status := http.StatusOK
	switch {
	case errors.Is(err, repository.ErrSlotsUnavailable):
		p.Guidance = slotsGuidance
	case errors.Is(err, query.ErrInvalidParams):
		p.Error = err.Error()
		status = http.StatusBadRequest
	case err != nil:
		h.Log.Error("consulta fallida", zap.String("consulta", p.Form.Consulta), zap.Error(err))
		p.Error = "La consulta falló: " + err.Error()
		status = http.StatusInternalServerError
	case empty:
		p.Warning = "La consulta no devolvió resultados."
	}
	h.render(w, "index.html", status, p)
}

func (h *ScheduleHandler) checkSlots(ctx context.Context, p *pageData) {
	st, err := h.Service.SlotStatus(ctx)
	if err != nil {
		h.Log.Warn("no se pudo leer el estado de slots", zap.Error(err))
		return
	}
	if st.Stale {
		p.Guidance = "La tabla de slots es anterior a la última carga. Ejecute \"horarios slots refresh\"."
	}
}

// Preview muestra las primeras filas de una tabla o del CSV de staging.
func (h *ScheduleHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	target := chi.URLParam(r, "target")
	p := &pageData{Scope: h.Service.Scope(), Targets: previewTargets(), Target: target}

	headers, rows, err := h.Service.Preview(ctx, target)
	status := http.StatusOK
	switch {
	case errors.Is(err, repository.ErrUnknownTarget):
		p.Error = err.Error()
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrSlotsUnavailable):
		p.Guidance = slotsGuidance
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, source.ErrEmptyStaging):
		p.Guidance = "Aún no hay CSV de staging. Ejecute \"horarios extract\" o suba documentos."
	case err != nil:
		h.Log.Error("vista previa fallida", zap.String("target", target), zap.Error(err))
		p.Error = "No se pudo leer " + target + ": " + err.Error()
		status = http.StatusInternalServerError
	case len(rows) == 0:
		p.Warning = "La tabla está vacía."
	}
	p.Headers, p.Rows = headers, rows
	h.render(w, "preview.html", status, p)
}

func (h *ScheduleHandler) render(w http.ResponseWriter, name string, status int, p *pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, name, p); err != nil {
		h.Log.Error("error renderizando plantilla", zap.String("template", name), zap.Error(err))
	}
}
