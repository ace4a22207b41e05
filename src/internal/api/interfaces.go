package api

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/echoreply/ifconf/src/internal/networking"
)

// GetSections returns the interface sections of the registry.
// GET /api/v1/sections
func (h *Handler) GetSections(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, SectionsResponse{Sections: h.deps.Section().Sections()})
}

// GetInterfaces returns live interfaces, filtered by the repeated
// "section" query parameter when given.
// GET /api/v1/interfaces
func (h *Handler) GetInterfaces(w http.ResponseWriter, r *http.Request) {
	sections := r.URL.Query()["section"]
	known := h.deps.Section().Sections()
	for _, s := range sections {
		if !slices.Contains(known, s) {
			WriteInvalidRequest(w, "unknown section "+s)
			return
		}
	}

	names, err := h.deps.Section().List(sections...)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	response := InterfacesResponse{Interfaces: []InterfaceInfo{}}
	for _, name := range names {
		info, err := h.interfaceInfo(name)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		// gone since enumeration
		if info == nil {
			continue
		}
		response.Interfaces = append(response.Interfaces, *info)
	}
	writeJSONData(w, response)
}

// GetInterface returns one live interface.
// GET /api/v1/interfaces/{name}
func (h *Handler) GetInterface(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	info, err := h.interfaceInfo(name)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if info == nil {
		WriteNotFound(w, "interface "+name)
		return
	}
	writeJSONData(w, info)
}

// interfaceInfo returns nil when the interface does not exist.
func (h *Handler) interfaceInfo(name string) (*InterfaceInfo, error) {
	link, err := h.deps.Links().Link(name)
	if err != nil || link == nil {
		return nil, err
	}
	variant, err := h.deps.Section().Klass(name)
	if err != nil {
		return nil, err
	}
	return newInterfaceInfo(link, variant.Section), nil
}

func newInterfaceInfo(link *networking.LinkInfo, section string) *InterfaceInfo {
	addrs := link.Addrs
	if addrs == nil {
		addrs = []string{}
	}
	return &InterfaceInfo{
		Name:      link.Name,
		Section:   section,
		Kind:      link.Kind,
		MTU:       link.MTU,
		Up:        link.Up,
		Master:    link.Master,
		Alias:     link.Alias,
		Addresses: addrs,
	}
}
