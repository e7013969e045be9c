package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
)

// StagingColumns es el encabezado del CSV de staging.
var StagingColumns = []string{"nrc", "clave", "materia", "seccion", "dias", "hora", "profesor", "salon", "programa", "periodo", "plan"}

var requiredColumns = StagingColumns[:9]

var ErrEmptyStaging = errors.New("el archivo de staging está vacío")

func WriteStaging(w io.Writer, records []domain.RawRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(StagingColumns); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.NRC, r.Clave, r.Materia, r.Seccion, r.Dias, r.Hora, r.Profesor, r.Salon, r.Programa, r.Periodo, r.Plan}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteStagingFile(path string, records []domain.RawRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("crear directorio de staging: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("crear staging %s: %w", path, err)
	}
	if err := WriteStaging(f, records); err != nil {
		f.Close()
		return fmt.Errorf("escribir staging %s: %w", path, err)
	}
	return f.Close()
}

// ReadStaging lee el CSV ubicando las columnas por nombre; periodo y plan son opcionales.
func ReadStaging(r io.Reader) ([]domain.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyStaging
	}
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}

	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("falta la columna %q en staging", col)
		}
	}

	get := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []domain.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("leer staging: %w", err)
		}
		records = append(records, domain.RawRecord{
			NRC:      get(row, "nrc"),
			Clave:    get(row, "clave"),
			Materia:  get(row, "materia"),
			Seccion:  get(row, "seccion"),
			Dias:     get(row, "dias"),
			Hora:     get(row, "hora"),
			Profesor: get(row, "profesor"),
			Salon:    get(row, "salon"),
			Programa: get(row, "programa"),
			Periodo:  get(row, "periodo"),
			Plan:     get(row, "plan"),
		})
	}
	if len(records) == 0 {
		return nil, ErrEmptyStaging
	}
	return records, nil
}

func ReadStagingFile(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir staging %s: %w", path, err)
	}
	defer f.Close()
	return ReadStaging(f)
}
