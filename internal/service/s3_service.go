package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/config"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/eventservice"
)

var (
	ErrNoFiles         = errors.New("no se recibieron archivos")
	ErrUnsupportedType = errors.New("tipo de archivo no soportado")
)

// Textract acepta estos formatos para análisis asíncrono.
var allowedTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/tiff":      ".tiff",
}

// Uploader es la parte de *manager.Uploader que se usa aquí.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Document es un archivo de horario recibido por el formulario.
type Document struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type UploadResult struct {
	EventID string   `json:"event_id,omitempty"`
	Bucket  string   `json:"bucket"`
	Keys    []string `json:"keys"`
	URLs    []string `json:"urls"`
}

type S3Svc struct {
	uploader   Uploader
	bucket     string
	publicBase string
	publisher  eventservice.EventPublisher
	log        *zap.Logger
}

func NewS3Svc(up config.UploadService, publisher eventservice.EventPublisher, log *zap.Logger) *S3Svc {
	return newS3Svc(up.Uploader, up.Bucket, up.PublicBase, publisher, log)
}

func newS3Svc(uploader Uploader, bucket, publicBase string, publisher eventservice.EventPublisher, log *zap.Logger) *S3Svc {
	if log == nil {
		log = zap.NewNop()
	}
	return &S3Svc{uploader: uploader, bucket: bucket, publicBase: publicBase, publisher: publisher, log: log}
}

// UploadSchedules sube los documentos y, si hay publicador, avisa al worker
// para que los procese.
func (s *S3Svc) UploadSchedules(ctx context.Context, docs []Document, prefix string, refreshSlots bool) (UploadResult, error) {
	if len(docs) == 0 {
		return UploadResult{}, ErrNoFiles
	}
	res := UploadResult{Bucket: s.bucket}

	for _, doc := range docs {
		ext, ok := allowedTypes[doc.ContentType]
		if !ok {
			return res, fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, doc.Name, doc.ContentType)
		}
		key := BuildObjectKey(sanitizeFilename(doc.Name), ext, prefix)

		_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        doc.Body,
			ContentType: aws.String(doc.ContentType),
		})
		if err != nil {
			return res, fmt.Errorf("error subiendo %s a S3: %w", doc.Name, err)
		}
		s.log.Info("documento subido", zap.String("key", key), zap.String("content_type", doc.ContentType))
		res.Keys = append(res.Keys, key)
		res.URLs = append(res.URLs, fmt.Sprintf("%s/%s", s.publicBase, key))
	}

	if s.publisher == nil {
		return res, nil
	}
	res.EventID = uuid.New().String()
	err := s.publisher.PublishScheduleUploaded(ctx, eventservice.ScheduleUploadedEvent{
		BaseEvent:    eventservice.BaseEvent{EventID: res.EventID, Source: "upload"},
		Bucket:       s.bucket,
		Keys:         res.Keys,
		RefreshSlots: refreshSlots,
	})
	if err != nil {
		return res, fmt.Errorf("documentos subidos pero no se pudo encolar la carga: %w", err)
	}
	return res, nil
}

// BuildObjectKey conserva el nombre original al final para que el sufijo de
// programa (_ITI, _ICC...) siga siendo detectable.
func BuildObjectKey(filename, ext, prefix string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if base == "" {
		base = "file"
	}
	key := fmt.Sprintf("%s-%s%s", uuid.New().String(), base, ext)
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	return name
}

// DetectContentType usa el encabezado declarado o, si falta, los primeros bytes.
func DetectContentType(declared string, head []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return strings.TrimSpace(strings.Split(declared, ";")[0])
	}
	return strings.Split(http.DetectContentType(head), ";")[0]
}
