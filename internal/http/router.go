package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/http/handlers"
)

const APIBasePath = "/api/v1"
const HealthPath = APIBasePath + "/health"
const UploadPath = APIBasePath + "/horarios/s3"
const EtlRunPath = APIBasePath + "/etl/run"

// Deps agrupa los servicios que expone el servidor. Upload y Etl son
// opcionales: sin ellos no se registran sus rutas.
type Deps struct {
	Query       handlers.QueryService
	Store       handlers.Pinger
	Upload      handlers.ScheduleUploader
	Etl         handlers.EtlRunner
	StagingPath string
	MaxUploadMB int64
	Gatherer    prometheus.Gatherer
	Log         *zap.Logger
}

func NewRouter(d Deps) *chi.Mux {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	initHealthRoutes(r, handlers.NewStatusHandler(d.Store))
	initMetricsRoutes(r, d.Gatherer)
	initQueryRoutes(r, &handlers.ScheduleHandler{Service: d.Query, Log: d.Log})

	if d.Upload != nil {
		r.Post(UploadPath, (&handlers.UploadHandler{Service: d.Upload, MaxUploadMB: d.MaxUploadMB, Log: d.Log}).Create)
	}
	if d.Etl != nil {
		r.Post(EtlRunPath, (&handlers.EtlHandler{Runner: d.Etl, StagingPath: d.StagingPath, Log: d.Log}).Run)
	}
	return r
}

func initHealthRoutes(r *chi.Mux, h *handlers.StatusHandler) {
	r.Get(HealthPath, h.Health)
}

func initMetricsRoutes(r *chi.Mux, g prometheus.Gatherer) {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

func initQueryRoutes(r *chi.Mux, h *handlers.ScheduleHandler) {
	r.Get("/", h.Index)
	r.Post("/run", h.Run)
	r.Get("/preview/{target}", h.Preview)
}
