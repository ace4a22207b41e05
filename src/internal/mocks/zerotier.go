// Package mocks provides mock implementations for testing.
//
// This package should ONLY be imported in test files (_test.go).
package mocks

import (
	"slices"
	"sort"
	"strings"

	"github.com/echoreply/ifconf/src/internal/zerotier"
)

// MockZeroTierClient is a mock implementation of the ZeroTierClient interface.
//
// By default it behaves like a small in-memory service: Join adds a network
// with a device named "zt" plus the first eight digits of the id, Leave
// removes it and SetNetworkFlags updates it. Function fields override
// individual methods; every call is recorded in Calls.
//
// Example usage:
//
//	mock := NewMockZeroTierClient()
//	mock.OnJoin = func(n *zerotier.Network) { host.AddLink(n.PortDeviceName, "tun", 2800) }
//	_, _ = mock.Join("8056c2e21c000001")
type MockZeroTierClient struct {
	NetworksState map[string]*zerotier.Network
	PeersState    []zerotier.Peer
	MoonsState    []zerotier.Moon
	StatusState   zerotier.Status

	// OnJoin is called after a network is added by the default Join.
	OnJoin func(n *zerotier.Network)
	// OnLeave is called after a network is removed by the default Leave.
	OnLeave func(n *zerotier.Network)

	StatusFunc          func() (*zerotier.Status, error)
	NetworksFunc        func() ([]zerotier.Network, error)
	NetworkFunc         func(id string) (*zerotier.Network, error)
	JoinFunc            func(id string) (*zerotier.Network, error)
	LeaveFunc           func(id string) error
	SetNetworkFlagsFunc func(id string, flags zerotier.NetworkFlags) error
	RealInterfaceFunc   func(id string) (string, error)

	Calls []string
}

// NewMockZeroTierClient creates a mock with an online node and no networks.
func NewMockZeroTierClient() *MockZeroTierClient {
	return &MockZeroTierClient{
		NetworksState: map[string]*zerotier.Network{},
		StatusState:   zerotier.Status{Address: "89e92ceee5", Online: true, Version: "1.14.0"},
	}
}

// AddNetwork places a joined network in the mock without recording a call.
func (m *MockZeroTierClient) AddNetwork(id, device string, addrs ...string) *zerotier.Network {
	n := &zerotier.Network{
		ID:                id,
		Status:            "OK",
		PortDeviceName:    device,
		AllowManaged:      true,
		AssignedAddresses: addrs,
	}
	m.NetworksState[id] = n
	return n
}

func (m *MockZeroTierClient) record(call string) {
	m.Calls = append(m.Calls, call)
}

func (m *MockZeroTierClient) Status() (*zerotier.Status, error) {
	m.record("status")
	if m.StatusFunc != nil {
		return m.StatusFunc()
	}
	status := m.StatusState
	return &status, nil
}

func (m *MockZeroTierClient) Networks() ([]zerotier.Network, error) {
	m.record("networks")
	if m.NetworksFunc != nil {
		return m.NetworksFunc()
	}
	ids := make([]string, 0, len(m.NetworksState))
	for id := range m.NetworksState {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]zerotier.Network, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.NetworksState[id])
	}
	return out, nil
}

func (m *MockZeroTierClient) Network(id string) (*zerotier.Network, error) {
	m.record("network " + id)
	if m.NetworkFunc != nil {
		return m.NetworkFunc(id)
	}
	n, ok := m.NetworksState[id]
	if !ok {
		return nil, nil
	}
	copied := *n
	return &copied, nil
}

func (m *MockZeroTierClient) Join(id string) (*zerotier.Network, error) {
	m.record("join " + id)
	if m.JoinFunc != nil {
		return m.JoinFunc(id)
	}
	n, ok := m.NetworksState[id]
	if !ok {
		device := "zt" + id
		if len(id) > 8 {
			device = "zt" + id[:8]
		}
		n = m.AddNetwork(id, device)
		if m.OnJoin != nil {
			m.OnJoin(n)
		}
	}
	copied := *n
	return &copied, nil
}

func (m *MockZeroTierClient) Leave(id string) error {
	m.record("leave " + id)
	if m.LeaveFunc != nil {
		return m.LeaveFunc(id)
	}
	if n, ok := m.NetworksState[id]; ok {
		delete(m.NetworksState, id)
		if m.OnLeave != nil {
			m.OnLeave(n)
		}
	}
	return nil
}

func (m *MockZeroTierClient) SetNetworkFlags(id string, flags zerotier.NetworkFlags) error {
	m.record("flags " + id)
	if m.SetNetworkFlagsFunc != nil {
		return m.SetNetworkFlagsFunc(id, flags)
	}
	if n, ok := m.NetworksState[id]; ok {
		n.AllowManaged, n.AllowGlobal, n.AllowDefault = flags.AllowManaged, flags.AllowGlobal, flags.AllowDefault
	}
	return nil
}

func (m *MockZeroTierClient) Peers() ([]zerotier.Peer, error) {
	m.record("peers")
	return slices.Clone(m.PeersState), nil
}

func (m *MockZeroTierClient) Peer(address string) (*zerotier.Peer, error) {
	m.record("peer " + address)
	for _, p := range m.PeersState {
		if p.Address == address {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *MockZeroTierClient) Moons() ([]zerotier.Moon, error) {
	m.record("moons")
	return slices.Clone(m.MoonsState), nil
}

func (m *MockZeroTierClient) Moon(id string) (*zerotier.Moon, error) {
	m.record("moon " + id)
	for _, moon := range m.MoonsState {
		if moon.ID == id {
			return &moon, nil
		}
	}
	return nil, nil
}

func (m *MockZeroTierClient) RealInterface(id string) (string, error) {
	m.record("real-interface " + id)
	if m.RealInterfaceFunc != nil {
		return m.RealInterfaceFunc(id)
	}
	if n, ok := m.NetworksState[id]; ok {
		return n.PortDeviceName, nil
	}
	return "", nil
}

// CallsWithPrefix returns recorded calls starting with prefix, e.g. "join".
func (m *MockZeroTierClient) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range m.Calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
