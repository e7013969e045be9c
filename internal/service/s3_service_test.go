package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovas-007/Olap-practica-jovas/internal/service/eventservice"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/source"
)

type fakeUploader struct {
	inputs []*s3.PutObjectInput
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.inputs = append(f.inputs, in)
	return &manager.UploadOutput{}, f.err
}

type fakeEvents struct {
	uploaded []eventservice.ScheduleUploadedEvent
	err      error
}

func (f *fakeEvents) PublishScheduleUploaded(_ context.Context, e eventservice.ScheduleUploadedEvent) error {
	f.uploaded = append(f.uploaded, e)
	return f.err
}

func (f *fakeEvents) PublishLoadCompleted(context.Context, eventservice.LoadCompletedEvent) error {
	return nil
}

func pdf(name string) Document {
	return Document{Name: name, ContentType: "application/pdf", Body: strings.NewReader("%PDF-1.7")}
}

func TestUploadSchedulesPublishesKeys(t *testing.T) {
	up := &fakeUploader{}
	events := &fakeEvents{}
	svc := newS3Svc(up, "horarios", "https://horarios.s3.us-east-1.amazonaws.com", events, nil)

	res, err := svc.UploadSchedules(context.Background(), []Document{pdf("Horario OTOÑO_ITI.pdf"), pdf("horario_ICC.pdf")}, "/uploads/", true)
	require.NoError(t, err)
	require.Len(t, res.Keys, 2)
	require.Len(t, up.inputs, 2)

	assert.Equal(t, "horarios", aws.ToString(up.inputs[0].Bucket))
	assert.Equal(t, "application/pdf", aws.ToString(up.inputs[0].ContentType))
	assert.True(t, strings.HasPrefix(res.Keys[0], "uploads/"))
	assert.True(t, strings.HasSuffix(res.Keys[0], "-Horario_OTOÑO_ITI.pdf"))
	assert.Equal(t, "https://horarios.s3.us-east-1.amazonaws.com/"+res.Keys[1], res.URLs[1])

	code, err := source.DetectProgram(res.Keys[0], nil)
	require.NoError(t, err)
	assert.Equal(t, "ITI", code)

	require.Len(t, events.uploaded, 1)
	assert.Equal(t, res.Keys, events.uploaded[0].Keys)
	assert.Equal(t, res.EventID, events.uploaded[0].EventID)
	assert.True(t, events.uploaded[0].RefreshSlots)
}

func TestUploadSchedulesRejectsInput(t *testing.T) {
	svc := newS3Svc(&fakeUploader{}, "horarios", "", nil, nil)

	_, err := svc.UploadSchedules(context.Background(), nil, "", false)
	assert.ErrorIs(t, err, ErrNoFiles)

	_, err = svc.UploadSchedules(context.Background(), []Document{{Name: "notas.txt", ContentType: "text/plain", Body: strings.NewReader("x")}}, "", false)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestUploadSchedulesWithoutPublisher(t *testing.T) {
	svc := newS3Svc(&fakeUploader{}, "horarios", "", nil, nil)

	res, err := svc.UploadSchedules(context.Background(), []Document{pdf("a_LCC.pdf")}, "", false)
	require.NoError(t, err)
	assert.Empty(t, res.EventID)
	assert.Len(t, res.Keys, 1)
}

func TestUploadSchedulesErrors(t *testing.T) {
	svc := newS3Svc(&fakeUploader{err: errors.New("access denied")}, "horarios", "", nil, nil)
	_, err := svc.UploadSchedules(context.Background(), []Document{pdf("a_ITI.pdf")}, "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a_ITI.pdf")

	events := &fakeEvents{err: errors.New("canal cerrado")}
	svc = newS3Svc(&fakeUploader{}, "horarios", "", events, nil)
	res, err := svc.UploadSchedules(context.Background(), []Document{pdf("a_ITI.pdf")}, "", false)
	require.Error(t, err)
	assert.Len(t, res.Keys, 1)
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectContentType("application/pdf; charset=binary", nil))
	assert.Equal(t, "application/pdf", DetectContentType("", []byte("%PDF-1.7\n")))
	assert.Equal(t, "image/png", DetectContentType("application/octet-stream", []byte("\x89PNG\r\n\x1a\n")))
}
