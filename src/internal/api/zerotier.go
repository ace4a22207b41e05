package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/echoreply/ifconf/src/internal/zerotier"
)

// GetZeroTierStatus returns the node status.
// GET /api/v1/zerotier/status
func (h *Handler) GetZeroTierStatus(w http.ResponseWriter, r *http.Request) {
	zt := h.zeroTier(w)
	if zt == nil {
		return
	}
	status, err := zt.Status()
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSONData(w, status)
}

// GetZeroTierNetworks returns all joined networks.
// GET /api/v1/zerotier/networks
func (h *Handler) GetZeroTierNetworks(w http.ResponseWriter, r *http.Request) {
	zt := h.zeroTier(w)
	if zt == nil {
		return
	}
	networks, err := zt.Networks()
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if networks == nil {
		networks = []zerotier.Network{}
	}
	writeJSONData(w, NetworksResponse{Networks: networks})
}

// GetZeroTierNetwork returns one joined network.
// GET /api/v1/zerotier/networks/{id}
func (h *Handler) GetZeroTierNetwork(w http.ResponseWriter, r *http.Request) {
	network, ok := h.network(w, r)
	if !ok {
		return
	}
	writeJSONData(w, network)
}

// GetZeroTierRoutes returns the managed routes of a joined network.
// GET /api/v1/zerotier/networks/{id}/routes
func (h *Handler) GetZeroTierRoutes(w http.ResponseWriter, r *http.Request) {
	network, ok := h.network(w, r)
	if !ok {
		return
	}
	routes := network.Routes
	if routes == nil {
		routes = []zerotier.Route{}
	}
	writeJSONData(w, RoutesResponse{Network: network.ID, Routes: routes})
}

func (h *Handler) network(w http.ResponseWriter, r *http.Request) (*zerotier.Network, bool) {
	id := chi.URLParam(r, "id")
	if !zerotier.ValidNetworkID(id) {
		WriteInvalidRequest(w, "invalid network id "+id)
		return nil, false
	}
	zt := h.zeroTier(w)
	if zt == nil {
		return nil, false
	}
	network, err := zt.Network(id)
	if err != nil {
		WriteDomainError(w, err)
		return nil, false
	}
	if network == nil {
		WriteNotFound(w, "network "+id)
		return nil, false
	}
	return network, true
}

// GetZeroTierPeers returns all known peers.
// GET /api/v1/zerotier/peers
func (h *Handler) GetZeroTierPeers(w http.ResponseWriter, r *http.Request) {
	zt := h.zeroTier(w)
	if zt == nil {
		return
	}
	peers, err := zt.Peers()
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if peers == nil {
		peers = []zerotier.Peer{}
	}
	writeJSONData(w, PeersResponse{Peers: peers})
}

// GetZeroTierPeer returns one peer and its paths.
// GET /api/v1/zerotier/peers/{address}
func (h *Handler) GetZeroTierPeer(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	zt := h.zeroTier(w)
	if zt == nil {
		return
	}
	peer, err := zt.Peer(address)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if peer == nil {
		WriteNotFound(w, "peer "+address)
		return
	}
	writeJSONData(w, peer)
}

// GetZeroTierMoons returns all orbited moons.
// GET /api/v1/zerotier/moons
func (h *Handler) GetZeroTierMoons(w http.ResponseWriter, r *http.Request) {
	zt := h.zeroTier(w)
	if zt == nil {
		return
	}
	moons, err := zt.Moons()
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if moons == nil {
		moons = []zerotier.Moon{}
	}
	writeJSONData(w, MoonsResponse{Moons: moons})
}

// GetZeroTierMoon returns one moon and its roots.
// GET /api/v1/zerotier/moons/{id}
func (h *Handler) GetZeroTierMoon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	zt := h.zeroTier(w)
	if zt == nil {
		return
	}
	moon, err := zt.Moon(id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if moon == nil {
		WriteNotFound(w, "moon "+id)
		return
	}
	writeJSONData(w, moon)
}
