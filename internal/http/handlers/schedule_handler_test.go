package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/repository"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/query"
)

type fakeQuery struct {
	schedule   []repository.ScheduleRow
	teachers   []string
	presence   []repository.PresenceRow
	err        error
	optionsErr error
	status     repository.SlotStatus
	useSlots   bool
}

func (f *fakeQuery) Scope() repository.Scope {
	return repository.Scope{Periodo: "OTOÑO 2025", Plan: "SEMESTRAL"}
}

func (f *fakeQuery) TeacherSchedule(context.Context, string) ([]repository.ScheduleRow, error) {
	return f.schedule, f.err
}

func (f *fakeQuery) SubjectTeachers(context.Context, string, string) ([]string, error) {
	return f.teachers, f.err
}

func (f *fakeQuery) TeachersInBuilding(_ context.Context, _, _, _ string, useSlots bool) ([]repository.PresenceRow, error) {
	f.useSlots = useSlots
	return f.presence, f.err
}

func (f *fakeQuery) Options(context.Context) (query.Options, error) {
	return query.Options{Teachers: []string{"Lopez Juan"}, Buildings: []string{"A1"}, Hours: []string{"07:00"}}, f.optionsErr
}

func (f *fakeQuery) SlotStatus(context.Context) (repository.SlotStatus, error) {
	return f.status, nil
}

func (f *fakeQuery) Preview(_ context.Context, target string) ([]string, [][]string, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return []string{"id", "nombre_completo"}, [][]string{{"1", "Lopez Juan"}}, nil
}

func newHandler(f *fakeQuery) *ScheduleHandler {
	return &ScheduleHandler{Service: f, Log: zap.NewNop()}
}

func postForm(h http.HandlerFunc, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestIndexRendersOptions(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(&fakeQuery{}).Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Horarios OTOÑO 2025")
	assert.Contains(t, body, `<option value="Lopez Juan">`)
	assert.Contains(t, body, "/preview/staging")
}

func TestRunTeacherScheduleShowsGrid(t *testing.T) {
	f := &fakeQuery{schedule: []repository.ScheduleRow{{
		Docente: "Lopez Juan", DiaCodigo: "L", DiaSemana: 1, Inicio: "07:00:00", Fin: "08:30:00",
		Minutos: 90, Clave: "CS101", Materia: "Programación", Edificio: "A1", Salon: "101",
	}}}
	rec := postForm(newHandler(f).Run, url.Values{"consulta": {"docente"}, "docente": {"lopez"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Calendario semanal")
	assert.Contains(t, body, "07:00 - 07:59")
	assert.Contains(t, body, "A1/101")
	assert.NotContains(t, body, `class="warning"`)
}

func TestRunDistinguishesOutcomes(t *testing.T) {
	cases := []struct {
		name   string
		fake   *fakeQuery
		form   url.Values
		status int
		class  string
	}{
		{
			name:   "sin resultados",
			fake:   &fakeQuery{},
			form:   url.Values{"consulta": {"materia"}, "clave": {"ZZ"}},
			status: http.StatusOK,
			class:  "warning",
		},
		{
			name:   "parámetros inválidos",
			fake:   &fakeQuery{err: fmt.Errorf("%w: debe indicar un edificio", query.ErrInvalidParams)},
			form:   url.Values{"consulta": {"edificio"}},
			status: http.StatusBadRequest,
			class:  "error",
		},
		{
			name:   "consulta fallida",
			fake:   &fakeQuery{err: errors.New("conexión perdida")},
			form:   url.Values{"consulta": {"docente"}, "docente": {"x"}},
			status: http.StatusInternalServerError,
			class:  "error",
		},
		{
			name:   "sin tabla de slots",
			fake:   &fakeQuery{err: repository.ErrSlotsUnavailable},
			form:   url.Values{"consulta": {"edificio"}, "edificio": {"A1"}, "hora": {"07:00"}, "slots": {"1"}},
			status: http.StatusOK,
			class:  "guidance",
		},
		{
			name:   "slots desactualizados",
			fake:   &fakeQuery{presence: []repository.PresenceRow{{Docente: "Lopez Juan", DiaSemana: 1}}, status: repository.SlotStatus{Available: true, Stale: true}},
			form:   url.Values{"consulta": {"edificio"}, "edificio": {"A1"}, "hora": {"07:00"}, "slots": {"1"}},
			status: http.StatusOK,
			class:  "guidance",
		},
		{
			name:   "consulta desconocida",
			fake:   &fakeQuery{},
			form:   url.Values{"consulta": {"otra"}},
			status: http.StatusBadRequest,
			class:  "error",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postForm(newHandler(tc.fake).Run, tc.form)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `class="`+tc.class+`"`)
		})
	}
}

func TestRunPassesSlotsFlag(t *testing.T) {
	f := &fakeQuery{presence: []repository.PresenceRow{{Docente: "Lopez Juan", DiaSemana: 1}}, status: repository.SlotStatus{Available: true}}
	rec := postForm(newHandler(f).Run, url.Values{"consulta": {"edificio"}, "edificio": {"A1"}, "hora": {"07:00"}, "slots": {"1"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.useSlots)
	assert.Contains(t, rec.Body.String(), "Docentes presentes")
	assert.NotContains(t, rec.Body.String(), `class="guidance"`)
}

func TestIndexShowsOptionsError(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(&fakeQuery{optionsErr: errors.New("relation dim_docente does not exist")}).
		Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No se pudieron cargar las opciones")
}

func TestRunKeepsOptionsError(t *testing.T) {
	f := &fakeQuery{
		optionsErr: errors.New("relation dim_docente does not exist"),
		teachers:   []string{"Lopez Juan"},
	}
	rec := postForm(newHandler(f).Run, url.Values{"consulta": {"materia"}, "clave": {"CS"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "No se pudieron cargar las opciones")
	assert.Contains(t, body, "Lopez Juan")

	f.err = errors.New("timeout")
	rec = postForm(newHandler(f).Run, url.Values{"consulta": {"materia"}, "clave": {"CS"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "No se pudieron cargar las opciones")
	assert.Contains(t, rec.Body.String(), "La consulta falló: timeout")
}

func preview(t *testing.T, f *fakeQuery, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/preview/{target}", newHandler(f).Preview)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/"+target, nil))
	return rec
}

func TestPreview(t *testing.T) {
	rec := preview(t, &fakeQuery{}, "dim_docente")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Vista previa: dim_docente")
	assert.Contains(t, rec.Body.String(), "<td>Lopez Juan</td>")

	rec = preview(t, &fakeQuery{err: fmt.Errorf("%w: %q", repository.ErrUnknownTarget, "usuarios")}, "usuarios")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = preview(t, &fakeQuery{err: repository.ErrSlotsUnavailable}, "fact_clase_slot")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "slots refresh")
}
