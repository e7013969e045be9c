package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/service"
)

type ScheduleUploader interface {
	UploadSchedules(ctx context.Context, docs []service.Document, prefix string, refreshSlots bool) (service.UploadResult, error)
}

type UploadHandler struct {
	Service     ScheduleUploader
	MaxUploadMB int64
	Log         *zap.Logger
}

// Create recibe uno o más documentos en el campo "file", los sube a S3 y
// encola su procesamiento.
func (h *UploadHandler) Create(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		http.Error(w, "archivo demasiado grande o inválido: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		http.Error(w, "El campo 'file' es obligatorio", http.StatusBadRequest)
		return
	}

	docs := make([]service.Document, 0, len(headers))
	for _, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			http.Error(w, "Error al obtener el archivo: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		contentType, err := sniff(file, fh)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		docs = append(docs, service.Document{Name: fh.Filename, ContentType: contentType, Body: file})
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	res, err := h.Service.UploadSchedules(ctx, docs, r.FormValue("prefix"), r.FormValue("refresh_slots") != "")
	switch {
	case errors.Is(err, service.ErrUnsupportedType), errors.Is(err, service.ErrNoFiles):
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	case err != nil && len(res.Keys) == len(docs):
		// Subidos, pero sin evento: el operador puede lanzar la carga a mano.
		h.Log.Error("documentos subidos sin encolar", zap.Strings("keys", res.Keys), zap.Error(err))
		writeJSON(w, http.StatusAccepted, res)
		return
	case err != nil:
		h.Log.Error("error subiendo documentos", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func sniff(file multipart.File, fh *multipart.FileHeader) (string, error) {
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("leer %s: %w", fh.Filename, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rebobinar %s: %w", fh.Filename, err)
	}
	return service.DetectContentType(fh.Header.Get("Content-Type"), head[:n]), nil
}
