package observability

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Goroutines int       `json:"goroutines"`
	Version    string    `json:"version,omitempty"`
}

// Version is stamped at build time.
var Version = "dev"

// HealthHandler returns an HTTP handler for health checks
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:     "healthy",
			Timestamp:  time.Now().UTC(),
			Goroutines: runtime.NumGoroutine(),
			Version:    Version,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, "encoding failure", http.StatusInternalServerError)
		}
	}
}
