package api

import (
	"encoding/json"
	"net/http"

	"github.com/echoreply/ifconf/src/internal/domain"
	"github.com/echoreply/ifconf/src/internal/log"
)

var (
	// Version information set via ldflags at build time
	Version = "dev"
	Date    = "n/a"
	Commit  = "n/a"
)

// Handler serves all API endpoints from the dependency container.
type Handler struct {
	deps *domain.AppDependencies
}

// NewHandler creates a new API handler.
func NewHandler(deps *domain.AppDependencies) *Handler {
	return &Handler{deps: deps}
}

// zeroTier returns the ZeroTier client or writes a 503 and returns nil.
func (h *Handler) zeroTier(w http.ResponseWriter) domain.ZeroTierClient {
	zt := h.deps.ZeroTierClient()
	if zt == nil {
		WriteServiceUnavailable(w, "ZeroTier integration is disabled")
	}
	return zt
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(DataResponse{Data: data}); err != nil {
		log.Warnf("Failed to encode response: %v", err)
	}
}

// writeJSONData writes a successful JSON response with data.
func writeJSONData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}
