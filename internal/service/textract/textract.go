package textract

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

var ErrAnalysisFailed = errors.New("el análisis de textract falló")

// API es el subconjunto del cliente de Textract que se usa aquí.
type API interface {
	StartDocumentAnalysis(ctx context.Context, in *textract.StartDocumentAnalysisInput, optFns ...func(*textract.Options)) (*textract.StartDocumentAnalysisOutput, error)
	GetDocumentAnalysis(ctx context.Context, in *textract.GetDocumentAnalysisInput, optFns ...func(*textract.Options)) (*textract.GetDocumentAnalysisOutput, error)
}

// Table es una tabla detectada, con las celdas de cada fila en orden de columna.
type Table struct {
	Rows [][]string
}

type TextractService struct {
	client API
	poll   time.Duration
	log    *zap.Logger
}

func NewTextractService(ctx context.Context, region string, log *zap.Logger) (*TextractService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return NewWithClient(textract.NewFromConfig(cfg), 2*time.Second, log), nil
}

func NewWithClient(client API, poll time.Duration, log *zap.Logger) *TextractService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TextractService{client: client, poll: poll, log: log}
}

// AnalyzeTables lanza el análisis asíncrono del documento en S3 y espera a que
// termine, recorriendo todas las páginas de resultados.
func (s *TextractService) AnalyzeTables(ctx context.Context, bucket, key string) ([]Table, error) {
	resp, err := s.client.StartDocumentAnalysis(ctx, &textract.StartDocumentAnalysisInput{
		DocumentLocation: &types.DocumentLocation{
			S3Object: &types.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		},
		FeatureTypes: []types.FeatureType{types.FeatureTypeTables},
	})
	if err != nil {
		return nil, describe("iniciar análisis", err)
	}
	jobID := aws.ToString(resp.JobId)
	log := s.log.With(zap.String("job_id", jobID), zap.String("key", key))
	log.Info("análisis de textract iniciado")

	for {
		result, err := s.client.GetDocumentAnalysis(ctx, &textract.GetDocumentAnalysisInput{JobId: aws.String(jobID)})
		if err != nil {
			return nil, describe("obtener resultado", err)
		}

		switch result.JobStatus {
		case types.JobStatusSucceeded, types.JobStatusPartialSuccess:
			blocks := append([]types.Block(nil), result.Blocks...)
			for next := result.NextToken; next != nil; {
				page, err := s.client.GetDocumentAnalysis(ctx, &textract.GetDocumentAnalysisInput{
					JobId:     aws.String(jobID),
					NextToken: next,
				})
				if err != nil {
					return nil, describe("paginación", err)
				}
				blocks = append(blocks, page.Blocks...)
				next = page.NextToken
			}
			tables := ExtractTables(blocks)
			log.Info("análisis de textract terminado", zap.Int("tablas", len(tables)), zap.Int("bloques", len(blocks)))
			return tables, nil
		case types.JobStatusFailed:
			return nil, fmt.Errorf("%w: %s", ErrAnalysisFailed, aws.ToString(result.StatusMessage))
		}

		log.Debug("esperando a textract", zap.String("estado", string(result.JobStatus)))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.poll):
		}
	}
}

func describe(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("textract %s: %s (%s): %w", op, apiErr.ErrorCode(), apiErr.ErrorMessage(), err)
	}
	return fmt.Errorf("textract %s: %w", op, err)
}

// ExtractTables arma las tablas a partir de los bloques TABLE y CELL.
func ExtractTables(blocks []types.Block) []Table {
	byID := make(map[string]types.Block, len(blocks))
	for _, b := range blocks {
		if b.Id != nil {
			byID[*b.Id] = b
		}
	}

	var tables []Table
	for _, b := range blocks {
		if b.BlockType != types.BlockTypeTable {
			continue
		}

		cells := map[int]map[int]string{}
		maxCol := 0
		for _, cellID := range childIDs(b) {
			cell, ok := byID[cellID]
			if !ok || cell.BlockType != types.BlockTypeCell || cell.RowIndex == nil || cell.ColumnIndex == nil {
				continue
			}
			row, col := int(*cell.RowIndex), int(*cell.ColumnIndex)
			if cells[row] == nil {
				cells[row] = map[int]string{}
			}
			cells[row][col] = cellText(cell, byID)
			if col > maxCol {
				maxCol = col
			}
		}

		rowIdx := make([]int, 0, len(cells))
		for r := range cells {
			rowIdx = append(rowIdx, r)
		}
		sort.Ints(rowIdx)

		table := Table{Rows: make([][]string, 0, len(rowIdx))}
		for _, r := range rowIdx {
			row := make([]string, maxCol)
			for c, text := range cells[r] {
				row[c-1] = text
			}
			table.Rows = append(table.Rows, row)
		}
		tables = append(tables, table)
	}
	return tables
}

func childIDs(b types.Block) []string {
	var ids []string
	for _, rel := range b.Relationships {
		if rel.Type == types.RelationshipTypeChild {
			ids = append(ids, rel.Ids...)
		}
	}
	return ids
}

func cellText(cell types.Block, byID map[string]types.Block) string {
	var words []string
	for _, id := range childIDs(cell) {
		w, ok := byID[id]
		if !ok || w.Text == nil {
			continue
		}
		if w.BlockType == types.BlockTypeSelectionElement {
			continue
		}
		words = append(words, *w.Text)
	}
	return strings.Join(words, " ")
}
