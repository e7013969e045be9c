package source

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
)

// Programas reconocidos cuando la configuración no define ninguno
var defaultPrograms = []string{"ITI", "ICC", "LCC"}

// TableParser convierte filas de tablas extraídas de los PDF de horarios en
// registros crudos. Las filas con la primera celda vacía continúan el nombre
// del profesor de la fila anterior.
type TableParser struct {
	salon *regexp.Regexp
	log   *zap.Logger
}

func NewTableParser(salonPattern string, log *zap.Logger) (*TableParser, error) {
	p := &TableParser{log: log}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	if salonPattern != "" {
		re, err := regexp.Compile(salonPattern)
		if err != nil {
			return nil, fmt.Errorf("salon_pattern inválido: %w", err)
		}
		p.salon = re
	}
	return p, nil
}

func (p *TableParser) ParseRows(rows [][]string, programa string) []domain.RawRecord {
	var records []domain.RawRecord
	for _, raw := range rows {
		row := make([]string, len(raw))
		empty := true
		for i, c := range raw {
			row[i] = strings.Join(strings.Fields(c), " ")
			if row[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}

		switch {
		case isDigits(row[0]) && len(row) >= 8:
			rec := domain.RawRecord{
				NRC:      row[0],
				Clave:    row[1],
				Materia:  row[2],
				Seccion:  row[3],
				Dias:     row[4],
				Hora:     row[5],
				Profesor: row[6],
				Salon:    row[7],
				Programa: programa,
			}
			records = append(records, rec)
		case row[0] == "" && len(row) >= 7:
			if len(records) == 0 {
				p.log.Warn("fila de profesor sin contexto", zap.Strings("fila", row))
				continue
			}
			last := &records[len(records)-1]
			last.Profesor = strings.TrimSpace(last.Profesor + " " + row[6])
		default:
			p.log.Debug("fila omitida por formato inesperado", zap.Strings("fila", row))
		}
	}
	return p.filterSalon(records)
}

// filterSalon corre sobre los registros ya unidos con sus continuaciones.
func (p *TableParser) filterSalon(records []domain.RawRecord) []domain.RawRecord {
	if p.salon == nil {
		return records
	}
	kept := records[:0]
	for _, rec := range records {
		if rec.Salon != "" && !p.salon.MatchString(rec.Salon) {
			p.log.Info("fila omitida por salón inválido", zap.String("salon", rec.Salon), zap.String("nrc", rec.NRC))
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}

// DetectProgram infiere el programa académico del nombre del archivo,
// por ejemplo "PA_OTOÑO_2025_SEMESTRAL_ITI.pdf".
func DetectProgram(name string, programas map[string]string) (string, error) {
	codes := defaultPrograms
	if len(programas) > 0 {
		codes = make([]string, 0, len(programas))
		for code := range programas {
			codes = append(codes, strings.ToUpper(code))
		}
		sort.Strings(codes)
	}

	base := strings.ToUpper(filepath.Base(name))
	base = strings.TrimSuffix(base, strings.ToUpper(filepath.Ext(base)))
	for _, code := range codes {
		if strings.HasSuffix(base, "_"+code) {
			return code, nil
		}
	}
	return "", fmt.Errorf("no se pudo inferir el programa desde el archivo %s", name)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
