package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"perfdash-backend/internal/handlers"
	"perfdash-backend/internal/middleware"
	"perfdash-backend/internal/websocket"
)

func New(
	recordHandler *handlers.RecordHandler,
	extractionHandler *handlers.ExtractionHandler,
	noticeHandler *handlers.NoticeHandler,
	extractLimiter *middleware.RateLimiter,
	wsHub *websocket.Hub,
	frontendURL string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Record Routes ────
		r.Route("/records", func(r chi.Router) {
			r.Get("/", recordHandler.List)
			r.Post("/reload", recordHandler.Reload)
			r.Delete("/{id}", recordHandler.Delete)
		})

		// ──── Extraction Routes ────
		r.Route("/extractions", func(r chi.Router) {
			r.With(extractLimiter.Middleware).Post("/", extractionHandler.Extract)

			r.Route("/draft", func(r chi.Router) {
				r.Get("/", extractionHandler.GetDraft)
				r.Put("/", extractionHandler.UpdateDraft)
				r.Delete("/", extractionHandler.DiscardDraft)
				r.Post("/confirm", extractionHandler.ConfirmDraft)
			})
		})

		// ──── Notices ────
		r.Get("/notices", noticeHandler.List)
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
