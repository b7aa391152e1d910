// HTTP parameter/telemetry surface: GET /params, PUT /params/{name}, GET
// /telemetry, GET /healthz, and (with a Streamer) GET /ws/telemetry. Router
// construction (middleware stack, cors) is grounded on
// internal/api/router.go; the routes themselves serve this core's own
// Registry rather than the teacher's auth/billing handlers.
package telemetry

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the HTTP surface over registry: the GET routes read it,
// and PUT /params/{name} writes one parameter through Registry.Set. healthy is
// polled on every /healthz request (typically SensorSource.Calibrated AND
// NOT emergency-stop-latched).
func NewRouter(registry *Registry, streamer *Streamer, healthy func() bool) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "PUT"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/params", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, registry.Snapshot())
	})

	r.Put("/params/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		var body struct {
			Value any `json:"value"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if !registry.Set(name, body.Value) {
			http.Error(w, "unknown or read-only parameter: "+name, http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/telemetry", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, registry.Snapshot())
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if healthy == nil || healthy() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"degraded"}`))
	})

	if streamer != nil {
		r.Get("/ws/telemetry", streamer.HandleWebSocket)
	}

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
