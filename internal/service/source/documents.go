package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/textract"
)

var ErrNoDocuments = errors.New("no se generaron registros desde los documentos")

type TableAnalyzer interface {
	AnalyzeTables(ctx context.Context, bucket, key string) ([]textract.Table, error)
}

// DocumentSource extrae registros crudos de los PDF de horarios guardados en S3.
type DocumentSource struct {
	analyzer  TableAnalyzer
	parser    *TableParser
	bucket    string
	programas map[string]string
	limit     int
	log       *zap.Logger
}

func NewDocumentSource(analyzer TableAnalyzer, parser *TableParser, bucket string, programas map[string]string, limit int, log *zap.Logger) *DocumentSource {
	if limit <= 0 {
		limit = 4
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentSource{
		analyzer:  analyzer,
		parser:    parser,
		bucket:    bucket,
		programas: programas,
		limit:     limit,
		log:       log,
	}
}

// Extract analiza los documentos en paralelo y devuelve sus registros en el
// orden de keys. Un documento que falla se registra y se omite.
func (s *DocumentSource) Extract(ctx context.Context, keys []string) ([]domain.RawRecord, error) {
	results := make([][]domain.RawRecord, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, key := range keys {
		g.Go(func() error {
			records, err := s.extractOne(ctx, key)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Error("documento omitido", zap.String("key", key), zap.Error(err))
				return nil
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []domain.RawRecord
	for _, r := range results {
		out = append(out, r...)
	}
	if len(out) == 0 {
		return nil, ErrNoDocuments
	}
	return out, nil
}

func (s *DocumentSource) extractOne(ctx context.Context, key string) ([]domain.RawRecord, error) {
	programa, err := DetectProgram(filepath.Base(key), s.programas)
	if err != nil {
		return nil, err
	}
	tables, err := s.analyzer.AnalyzeTables(ctx, s.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("analizar %s: %w", key, err)
	}

	var records []domain.RawRecord
	for _, t := range tables {
		records = append(records, s.parser.ParseRows(t.Rows, programa)...)
	}
	s.log.Info("documento procesado", zap.String("key", key), zap.String("programa", programa), zap.Int("registros", len(records)))
	return records, nil
}
