package handlers

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/etl"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/source"
)

type EtlRunner interface {
	Run(ctx context.Context, src iter.Seq[domain.RawRecord], opts etl.RunOptions) (etl.RunReport, error)
}

type EtlHandler struct {
	Runner      EtlRunner
	StagingPath string
	Log         *zap.Logger
}

type runResponse struct {
	RunID     uuid.UUID      `json:"run_id"`
	Fuente    string         `json:"fuente"`
	Leidos    int            `json:"leidos"`
	Emitidos  int            `json:"emitidos"`
	Rechazos  map[string]int `json:"rechazos"`
	Hechos    int            `json:"hechos"`
	Reemplazo int64          `json:"reemplazados"`
	Slots     int            `json:"slots,omitempty"`
	Duracion  string         `json:"duracion"`
}

// Run carga el CSV de staging al almacén. Con ?refresh_slots=1 también
// regenera la tabla de slots.
func (h *EtlHandler) Run(w http.ResponseWriter, r *http.Request) {
	records, err := source.ReadStagingFile(h.StagingPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	report, err := h.Runner.Run(ctx, slices.Values(records), etl.RunOptions{
		Source:       h.StagingPath,
		RefreshSlots: r.URL.Query().Get("refresh_slots") != "",
	})
	switch {
	case errors.Is(err, etl.ErrRunInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, etl.ErrNoRecords):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case err != nil:
		h.Log.Error("corrida ETL fallida", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := runResponse{
		RunID:     report.RunID,
		Fuente:    report.Source,
		Leidos:    report.Read,
		Emitidos:  report.Emitted,
		Rechazos:  report.Rejected,
		Hechos:    report.Facts,
		Reemplazo: report.Replaced,
		Duracion:  report.FinishedAt.Sub(report.StartedAt).String(),
	}
	if report.Slots != nil {
		resp.Slots = report.Slots.Slots
	}
	writeJSON(w, http.StatusOK, resp)
}
