package source

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/textract"
)

const salonPattern = `^[A-Z0-9]+\s*/\s*[A-Z0-9-]+$`

func scheduleRows() [][]string {
	return [][]string{
		{"NRC", "Clave", "Materia", "Sección", "Días", "Hora", "Profesor", "Salón"},
		{"12345", "CS101", "Programación I", "01", "L/M/V", "0700-0830", "LOPEZ", "A1/101"},
		{"", "", "", "", "", "", "JUAN", ""},
		{"", "", "", "", "", "", "", ""},
		{"12346", "MA200", "Cálculo", "02", "AJ", "1000-1200", "Perez  Ana", "SIN SALON"},
		{"12347", "FI300", "Física", "01", "S", "0900-1100", "Ramirez Luis", "B2/5"},
	}
}

func TestParseRowsMergesContinuationAndFiltersSalon(t *testing.T) {
	p, err := NewTableParser(salonPattern, nil)
	require.NoError(t, err)

	records := p.ParseRows(scheduleRows(), "ITI")

	require.Len(t, records, 2)
	assert.Equal(t, "12345", records[0].NRC)
	assert.Equal(t, "LOPEZ JUAN", records[0].Profesor)
	assert.Equal(t, "L/M/V", records[0].Dias)
	assert.Equal(t, "ITI", records[0].Programa)
	assert.Equal(t, "12347", records[1].NRC)
}

func TestParseRowsContinuationAfterInvalidSalon(t *testing.T) {
	p, err := NewTableParser(`^[A-Z0-9]+/[0-9]+$`, nil)
	require.NoError(t, err)

	records := p.ParseRows([][]string{
		{"100", "CS1", "Algoritmos", "01", "L", "0700-0830", "LOPEZ", "A1/101"},
		{"200", "CS2", "Redes", "01", "M", "0900-1030", "PEREZ", "SIN SALON"},
		{"", "", "", "", "", "", "ANA", ""},
	}, "ITI")

	require.Len(t, records, 1)
	assert.Equal(t, "100", records[0].NRC)
	assert.Equal(t, "LOPEZ", records[0].Profesor)
}

func TestParseRowsWithoutSalonPattern(t *testing.T) {
	p, err := NewTableParser("", nil)
	require.NoError(t, err)

	records := p.ParseRows(scheduleRows(), "ICC")
	require.Len(t, records, 3)
	assert.Equal(t, "Perez Ana", records[1].Profesor)
}

func TestParseRowsOrphanContinuation(t *testing.T) {
	p, err := NewTableParser("", nil)
	require.NoError(t, err)

	records := p.ParseRows([][]string{{"", "", "", "", "", "", "JUAN", ""}}, "ITI")
	assert.Empty(t, records)
}

func TestDetectProgram(t *testing.T) {
	code, err := DetectProgram("PA_OTOÑO_2025_SEMESTRAL_iti.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, "ITI", code)

	code, err = DetectProgram("uploads/2025/horario_LCC.PDF", nil)
	require.NoError(t, err)
	assert.Equal(t, "LCC", code)

	code, err = DetectProgram("horario_MAT.pdf", map[string]string{"mat": "Matemáticas"})
	require.NoError(t, err)
	assert.Equal(t, "MAT", code)

	_, err = DetectProgram("horario.pdf", nil)
	assert.Error(t, err)
}

func TestStagingRoundTrip(t *testing.T) {
	in := []domain.RawRecord{
		{NRC: "12345", Clave: "CS101", Materia: "Programación, I", Seccion: "01", Dias: "LMV", Hora: "0700-0830", Profesor: "Lopez Juan", Salon: "A1/101", Programa: "ITI"},
		{NRC: "12346", Clave: "MA200", Materia: "Cálculo \"A\"", Seccion: "02", Dias: "AJ", Hora: "1000-1200", Profesor: "Perez Ana", Salon: "B2/5", Programa: "ICC", Periodo: "PRIMAVERA 2026", Plan: "SEMESTRAL"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteStaging(&buf, in))

	out, err := ReadStaging(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadStagingByColumnName(t *testing.T) {
	data := "programa,nrc,clave,materia,seccion,dias,hora,profesor,salon\nITI,1,CS1,Algo,01,L,0700-0800,Ana,A1/1\n"

	out, err := ReadStaging(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "ITI", out[0].Programa)
	assert.Equal(t, "1", out[0].NRC)
	assert.Empty(t, out[0].Periodo)
}

func TestReadStagingErrors(t *testing.T) {
	_, err := ReadStaging(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyStaging)

	_, err = ReadStaging(strings.NewReader(strings.Join(StagingColumns, ",") + "\n"))
	assert.ErrorIs(t, err, ErrEmptyStaging)

	_, err = ReadStaging(strings.NewReader("nrc,clave\n1,CS1\n"))
	assert.ErrorContains(t, err, "materia")
}

func TestStagingFile(t *testing.T) {
	path := t.TempDir() + "/staging/staging.csv"
	in := []domain.RawRecord{{NRC: "1", Clave: "CS1", Materia: "Algo", Seccion: "01", Dias: "L", Hora: "0700-0800", Profesor: "Ana", Salon: "A1/1", Programa: "ITI"}}

	require.NoError(t, WriteStagingFile(path, in))
	out, err := ReadStagingFile(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

type fakeAnalyzer struct {
	mu     sync.Mutex
	tables map[string][]textract.Table
	seen   []string
}

func (f *fakeAnalyzer) AnalyzeTables(_ context.Context, bucket, key string) ([]textract.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, bucket+"/"+key)
	tables, ok := f.tables[key]
	if !ok {
		return nil, errors.New("documento no encontrado")
	}
	return tables, nil
}

func TestDocumentSourceExtract(t *testing.T) {
	parser, err := NewTableParser("", nil)
	require.NoError(t, err)
	analyzer := &fakeAnalyzer{tables: map[string][]textract.Table{
		"in/horario_ITI.pdf": {{Rows: scheduleRows()[:3]}},
		"in/horario_ICC.pdf": {{Rows: scheduleRows()[4:]}},
	}}
	src := NewDocumentSource(analyzer, parser, "horarios", nil, 2, nil)

	records, err := src.Extract(context.Background(), []string{"in/horario_ITI.pdf", "in/perdido_ITI.pdf", "in/horario_ICC.pdf", "in/sin_programa.pdf"})
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "ITI", records[0].Programa)
	assert.Equal(t, "LOPEZ JUAN", records[0].Profesor)
	assert.Equal(t, "ICC", records[1].Programa)
	assert.Len(t, analyzer.seen, 3)
	assert.Contains(t, analyzer.seen, "horarios/in/horario_ICC.pdf")
}

func TestDocumentSourceWithoutRecords(t *testing.T) {
	parser, err := NewTableParser("", nil)
	require.NoError(t, err)
	src := NewDocumentSource(&fakeAnalyzer{}, parser, "horarios", nil, 0, nil)

	_, err = src.Extract(context.Background(), []string{"a_ITI.pdf"})
	assert.ErrorIs(t, err, ErrNoDocuments)
}
