package api

import "github.com/echoreply/ifconf/src/internal/zerotier"

// DataResponse wraps successful responses with a "data" field.
type DataResponse struct {
	Data any `json:"data"`
}

// InterfaceInfo describes one live interface.
type InterfaceInfo struct {
	Name      string   `json:"name"`
	Section   string   `json:"section"`
	Kind      string   `json:"kind"`
	MTU       int      `json:"mtu"`
	Up        bool     `json:"up"`
	Master    string   `json:"master,omitempty"`
	Alias     string   `json:"alias,omitempty"`
	Addresses []string `json:"addresses"`
}

// InterfacesResponse represents the response for the interfaces list endpoint.
type InterfacesResponse struct {
	Interfaces []InterfaceInfo `json:"interfaces"`
}

// SectionsResponse lists the interface sections known to the registry.
type SectionsResponse struct {
	Sections []string `json:"sections"`
}

// NetworksResponse lists joined ZeroTier networks.
type NetworksResponse struct {
	Networks []zerotier.Network `json:"networks"`
}

// RoutesResponse lists the managed routes of one network.
type RoutesResponse struct {
	Network string           `json:"network"`
	Routes  []zerotier.Route `json:"routes"`
}

// PeersResponse lists known ZeroTier peers.
type PeersResponse struct {
	Peers []zerotier.Peer `json:"peers"`
}

// MoonsResponse lists orbited moons.
type MoonsResponse struct {
	Moons []zerotier.Moon `json:"moons"`
}

// VersionInfo contains build version information.
type VersionInfo struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Commit  string `json:"commit"`
}

// HealthCheckResponse returns health check results.
type HealthCheckResponse struct {
	Version VersionInfo            `json:"version"`
	Healthy bool                   `json:"healthy"`
	Checks  map[string]CheckResult `json:"checks"`
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}
