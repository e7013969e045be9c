package textract

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func word(id, text string) types.Block {
	return types.Block{Id: aws.String(id), BlockType: types.BlockTypeWord, Text: aws.String(text)}
}

func cell(id string, row, col int32, words ...string) types.Block {
	return types.Block{
		Id:          aws.String(id),
		BlockType:   types.BlockTypeCell,
		RowIndex:    aws.Int32(row),
		ColumnIndex: aws.Int32(col),
		Relationships: []types.Relationship{
			{Type: types.RelationshipTypeChild, Ids: words},
		},
	}
}

func table(id string, cells ...string) types.Block {
	return types.Block{
		Id:        aws.String(id),
		BlockType: types.BlockTypeTable,
		Relationships: []types.Relationship{
			{Type: types.RelationshipTypeChild, Ids: cells},
		},
	}
}

func sampleBlocks() []types.Block {
	return []types.Block{
		table("t1", "c11", "c12", "c21", "c22", "c23"),
		cell("c11", 1, 1, "w1"),
		cell("c12", 1, 2, "w2", "w3"),
		cell("c21", 2, 1, "w4"),
		cell("c23", 2, 3, "w5"),
		cell("c22", 2, 2),
		word("w1", "12345"),
		word("w2", "Lopez"),
		word("w3", "Juan"),
		word("w4", "12346"),
		word("w5", "A1/101"),
	}
}

func TestExtractTablesOrdersCells(t *testing.T) {
	tables := ExtractTables(sampleBlocks())

	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{
		{"12345", "Lopez Juan", ""},
		{"12346", "", "A1/101"},
	}, tables[0].Rows)
}

type fakeAPI struct {
	statuses []types.JobStatus
	pages    [][]types.Block
	startErr error
	calls    int
}

func (f *fakeAPI) StartDocumentAnalysis(_ context.Context, in *textract.StartDocumentAnalysisInput, _ ...func(*textract.Options)) (*textract.StartDocumentAnalysisOutput, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &textract.StartDocumentAnalysisOutput{JobId: aws.String("job-1")}, nil
}

func (f *fakeAPI) GetDocumentAnalysis(_ context.Context, in *textract.GetDocumentAnalysisInput, _ ...func(*textract.Options)) (*textract.GetDocumentAnalysisOutput, error) {
	if in.NextToken != nil {
		return &textract.GetDocumentAnalysisOutput{JobStatus: types.JobStatusSucceeded, Blocks: f.pages[1]}, nil
	}
	status := f.statuses[min(f.calls, len(f.statuses)-1)]
	f.calls++
	out := &textract.GetDocumentAnalysisOutput{JobStatus: status}
	if status == types.JobStatusSucceeded {
		out.Blocks = f.pages[0]
		if len(f.pages) > 1 {
			out.NextToken = aws.String("next")
		}
	}
	if status == types.JobStatusFailed {
		out.StatusMessage = aws.String("documento ilegible")
	}
	return out, nil
}

func TestAnalyzeTablesPollsAndPaginates(t *testing.T) {
	blocks := sampleBlocks()
	api := &fakeAPI{
		statuses: []types.JobStatus{types.JobStatusInProgress, types.JobStatusSucceeded},
		pages:    [][]types.Block{blocks[:6], blocks[6:]},
	}
	svc := NewWithClient(api, 0, nil)

	tables, err := svc.AnalyzeTables(context.Background(), "bucket", "horarios_ITI.pdf")
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "Lopez Juan", tables[0].Rows[0][1])
	assert.Equal(t, 2, api.calls)
}

func TestAnalyzeTablesFailedJob(t *testing.T) {
	api := &fakeAPI{statuses: []types.JobStatus{types.JobStatusFailed}}
	svc := NewWithClient(api, 0, nil)

	_, err := svc.AnalyzeTables(context.Background(), "bucket", "x.pdf")
	assert.ErrorIs(t, err, ErrAnalysisFailed)
	assert.Contains(t, err.Error(), "documento ilegible")
}

func TestAnalyzeTablesDescribesAPIErrors(t *testing.T) {
	api := &fakeAPI{startErr: &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "sin permisos"}}
	svc := NewWithClient(api, 0, nil)

	_, err := svc.AnalyzeTables(context.Background(), "bucket", "x.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDeniedException")
}
