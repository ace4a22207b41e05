package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/echoreply/ifconf/src/internal/domain"
)

// NewRouter creates a new HTTP router with all API endpoints.
func NewRouter(deps *domain.AppDependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery)
	r.Use(Logger)
	r.Use(PrivateSubnetOnly)

	h := NewHandler(deps)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.CheckHealth)
		r.Get("/sections", h.GetSections)

		r.Get("/interfaces", h.GetInterfaces)
		r.Get("/interfaces/{name}", h.GetInterface)

		r.Route("/zerotier", func(r chi.Router) {
			r.Get("/status", h.GetZeroTierStatus)
			r.Get("/networks", h.GetZeroTierNetworks)
			r.Get("/networks/{id}", h.GetZeroTierNetwork)
			r.Get("/networks/{id}/routes", h.GetZeroTierRoutes)
			r.Get("/peers", h.GetZeroTierPeers)
			r.Get("/peers/{address}", h.GetZeroTierPeer)
			r.Get("/moons", h.GetZeroTierMoons)
			r.Get("/moons/{id}", h.GetZeroTierMoon)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "endpoint "+r.URL.Path)
	})

	return r
}
