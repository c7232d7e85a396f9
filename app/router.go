package app

import (
	"encoding/json"
	"net/http"

	"github.com/Black-And-White-Club/typer-master/app/middleware"
	"github.com/Black-And-White-Club/typer-master/app/observability"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const welcomeMessage = "Welcome to the TyperMaster API!"

// newRouter builds the root router with the shared middleware stack and the
// routes that belong to no module.
func newRouter(obs observability.Observability, origins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(obs.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(origins))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": welcomeMessage})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{
		Registry: obs.Registry,
	}))

	return r
}
