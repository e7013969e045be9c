package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
	"github.com/jovas-007/Olap-practica-jovas/internal/repository"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/source"
)

type fakeRepo struct {
	scope    repository.Scope
	docente  string
	byClave  string
	byName   string
	presence repository.PresenceFilter
}

func (f *fakeRepo) TeacherSchedule(_ context.Context, scope repository.Scope, docente string) ([]repository.ScheduleRow, error) {
	f.scope, f.docente = scope, docente
	return nil, nil
}

func (f *fakeRepo) SubjectTeachersByClave(_ context.Context, prefix string) ([]string, error) {
	f.byClave = prefix
	return []string{"Lopez Juan"}, nil
}

func (f *fakeRepo) SubjectTeachersByName(_ context.Context, text string) ([]string, error) {
	f.byName = text
	return []string{"Perez Ana"}, nil
}

func (f *fakeRepo) TeachersInBuilding(_ context.Context, p repository.PresenceFilter) ([]repository.PresenceRow, error) {
	f.presence = p
	return nil, nil
}

func (f *fakeRepo) Teachers(context.Context) ([]string, error) { return []string{"Lopez Juan"}, nil }

func (f *fakeRepo) Subjects(context.Context) ([]repository.SubjectOption, error) {
	return []repository.SubjectOption{{Clave: "CS101", Nombre: "Programación"}}, nil
}

func (f *fakeRepo) Buildings(context.Context) ([]string, error) { return []string{"A1"}, nil }

func (f *fakeRepo) Hours(context.Context) ([]string, error) {
	return []string{"07:00:00", "10:30:00"}, nil
}

func (f *fakeRepo) Preview(_ context.Context, target string) ([]string, [][]string, error) {
	return []string{"id"}, [][]string{{target}}, nil
}

var scope = repository.Scope{Periodo: "OTOÑO 2025", Plan: "SEMESTRAL"}

func TestTeacherScheduleCollapsesName(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, scope, "", nil)

	_, err := svc.TeacherSchedule(context.Background(), "  lopez   juan ")
	require.NoError(t, err)
	assert.Equal(t, "lopez juan", repo.docente)
	assert.Equal(t, scope, repo.scope)

	_, err = svc.TeacherSchedule(context.Background(), " ")
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestSubjectTeachersChoosesBranch(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, scope, "", nil)
	ctx := context.Background()

	names, err := svc.SubjectTeachers(ctx, " cs1 ", "cálculo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lopez Juan"}, names)
	assert.Equal(t, "CS1", repo.byClave)
	assert.Empty(t, repo.byName)

	names, err = svc.SubjectTeachers(ctx, "", "  cálculo  diferencial ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Perez Ana"}, names)
	assert.Equal(t, "cálculo diferencial", repo.byName)

	_, err = svc.SubjectTeachers(ctx, " ", "")
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestTeachersInBuildingNormalizesInput(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, scope, "", nil)

	_, err := svc.TeachersInBuilding(context.Background(), " A1 ", " 101 ", "0900", true)
	require.NoError(t, err)
	assert.Equal(t, repository.PresenceFilter{Edificio: "A1", Salon: "101", Hora: "09:00:00", Slots: true}, repo.presence)

	_, err = svc.TeachersInBuilding(context.Background(), "", "", "09:00", false)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = svc.TeachersInBuilding(context.Background(), "A1", "", "nueve", false)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestNormalizeHour(t *testing.T) {
	for in, want := range map[string]string{
		"9":        "09:00:00",
		"0900":     "09:00:00",
		"9:30":     "09:30:00",
		"09:00":    "09:00:00",
		"13:45:00": "13:45:00",
	} {
		got, err := NormalizeHour(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "25:00", "9am"} {
		_, err := NormalizeHour(in)
		assert.ErrorIs(t, err, ErrInvalidParams, in)
	}
}

func TestOptionsShortensHours(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, scope, "", nil)

	opts, err := svc.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"07:00", "10:30"}, opts.Hours)
	assert.Equal(t, []string{"A1"}, opts.Buildings)
}

func TestPreviewStaging(t *testing.T) {
	path := t.TempDir() + "/staging.csv"
	require.NoError(t, source.WriteStagingFile(path, []domain.RawRecord{{NRC: "1", Clave: "CS1", Profesor: "Ana"}}))
	svc := NewService(&fakeRepo{}, nil, scope, path, nil)

	headers, rows, err := svc.Preview(context.Background(), StagingTarget)
	require.NoError(t, err)
	assert.Equal(t, source.StagingColumns, headers)
	require.Len(t, rows, 1)
	assert.Equal(t, "CS1", rows[0][1])

	_, rows, err = svc.Preview(context.Background(), "dim_docente")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"dim_docente"}}, rows)
}

func TestSlotStatusWithoutReader(t *testing.T) {
	st, err := NewService(&fakeRepo{}, nil, scope, "", nil).SlotStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Available)
}
