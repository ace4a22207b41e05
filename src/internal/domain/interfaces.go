// Package domain defines core interfaces for dependency injection and abstraction.
//
// This package contains the interfaces conf-mode handlers and op-mode
// commands depend on, so that tests can substitute mocks for the ZeroTier
// service, the template renderer and the host.
package domain

import (
	"github.com/echoreply/ifconf/src/internal/template"
	"github.com/echoreply/ifconf/src/internal/zerotier"
)

// ZeroTierClient defines the interface for talking to the local zerotier-one service.
//
// Lookups of a single object return nil without error when it does not exist.
type ZeroTierClient interface {
	// Status returns the node status.
	Status() (*zerotier.Status, error)

	// Networks returns all joined networks.
	Networks() ([]zerotier.Network, error)

	// Network returns one joined network, or nil when the node is not a member.
	Network(id string) (*zerotier.Network, error)

	// Join joins a network. Joining a joined network is a no-op for the service.
	Join(id string) (*zerotier.Network, error)

	// Leave leaves a network. Leaving a network that is not joined succeeds.
	Leave(id string) error

	// SetNetworkFlags sets the managed/global/default flags of a joined network.
	SetNetworkFlags(id string, flags zerotier.NetworkFlags) error

	Peers() ([]zerotier.Peer, error)
	Peer(address string) (*zerotier.Peer, error)
	Moons() ([]zerotier.Moon, error)
	Moon(id string) (*zerotier.Moon, error)

	// RealInterface returns the OS device of a joined network, or "".
	RealInterface(id string) (string, error)
}

// Renderer defines the template rendering surface handlers use to write
// daemon configuration files.
type Renderer interface {
	// RenderString renders a named template.
	RenderString(name string, vars template.Vars) (string, error)

	// Render renders a named template into dest with the given file options.
	Render(dest, name string, vars template.Vars, opts template.FileOptions) error
}
