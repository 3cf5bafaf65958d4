package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/kscreener/internal/api/handlers"
	"github.com/wonny/kscreener/pkg/logger"
)

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(screenHandler *handlers.ScreenHandler, hub *Hub, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Screen state and mutations
	api.HandleFunc("/screen/state", screenHandler.GetState).Methods("GET")
	api.HandleFunc("/screen/filters", screenHandler.UpdateFilters).Methods("PUT")
	api.HandleFunc("/screen/refresh", screenHandler.Refresh).Methods("POST")
	api.HandleFunc("/screen/search", screenHandler.GetSearch).Methods("GET")
	api.HandleFunc("/screen/search", screenHandler.SearchInput).Methods("POST")
	api.HandleFunc("/screen/select", screenHandler.Select).Methods("POST")

	// Direct quote lookup (deep links)
	api.HandleFunc("/quote/{code}", screenHandler.GetQuote).Methods("GET")

	// Theme preference
	api.HandleFunc("/theme", screenHandler.GetTheme).Methods("GET")
	api.HandleFunc("/theme", screenHandler.PutTheme).Methods("PUT")

	// Snapshot push channel
	api.HandleFunc("/screen/ws", hub.Serve).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "kscreener-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
