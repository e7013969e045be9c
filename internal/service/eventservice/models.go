package eventservice

import (
	"time"

	"github.com/google/uuid"
)

type BaseEvent struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	OccurredAt    time.Time         `json:"occurred_at"`
	Version       string            `json:"version"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Source        string            `json:"source,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
}

// ---- Documentos de horario subidos a S3 ----
type ScheduleUploadedEvent struct {
	BaseEvent
	Bucket       string   `json:"bucket"`
	Keys         []string `json:"keys"`
	RefreshSlots bool     `json:"refresh_slots"`
}

// ---- Carga al almacén terminada ----
type LoadCompletedEvent struct {
	BaseEvent
	RunID     uuid.UUID      `json:"run_id"`
	Fuente    string         `json:"fuente"`
	Leidos    int            `json:"leidos"`
	Emitidos  int            `json:"emitidos"`
	Rechazos  map[string]int `json:"rechazos,omitempty"`
	Hechos    int            `json:"hechos"`
	Reemplazo int64          `json:"reemplazados"`
	Slots     int            `json:"slots,omitempty"`
}
