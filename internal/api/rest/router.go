package rest

import (
	"net/http"
	"strings"

	"notes-manager/internal/api/http/middleware"
	"notes-manager/internal/config"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter собирает маршрутизатор REST API с цепочкой middleware.
// Порядок middleware (снаружи внутрь): CORS → Logging → RateLimit.
func NewRouter(h *Handler, events *EventsHandler, cfg *config.ConfigGateway) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	router.HandleFunc("/notes", h.ListNotes).Methods(http.MethodGet)
	router.HandleFunc("/notes", h.CreateNote).Methods(http.MethodPost)
	// WebSocket фид должен быть зарегистрирован раньше /notes/{id}
	router.HandleFunc("/notes/events", events.Serve).Methods(http.MethodGet)
	router.HandleFunc("/notes/{id}", h.GetNote).Methods(http.MethodGet)
	router.HandleFunc("/notes/{id}", h.UpdateNote).Methods(http.MethodPut)
	router.HandleFunc("/notes/{id}", h.DeleteNote).Methods(http.MethodDelete)

	router.HandleFunc("/logs", h.ListLogs).Methods(http.MethodGet)
	router.HandleFunc("/reset", h.Reset).Methods(http.MethodPost)

	var handler http.Handler = router
	handler = middleware.RateLimit(handler, cfg.RateLimitRPS, cfg.RateLimitBurst)
	handler = middleware.Logging(handler)
	handler = setupCORS(cfg).Handler(handler)

	return handler
}

// setupCORS настраивает CORS middleware используя конфигурацию
func setupCORS(cfg *config.ConfigGateway) *cors.Cors {
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	maxAge := cfg.CORSMaxAge
	if maxAge == 0 {
		maxAge = 86400 // 24 часа по умолчанию
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"X-Requested-With",
		},
		AllowCredentials: true,
		MaxAge:           maxAge,
	})
}
