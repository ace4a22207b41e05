package ifconfig

import (
	"fmt"

	"github.com/echoreply/ifconf/src/internal/command"
	"github.com/echoreply/ifconf/src/internal/errors"
)

// linkDriver creates virtual links with "ip link add ... type <kind>".
type linkDriver struct {
	kind string
}

func (d linkDriver) Create(i *Interface) error {
	return i.Run(command.IPLink("add", "dev", i.Name(), "type", d.kind))
}

func (d linkDriver) Teardown(i *Interface) error {
	return i.Run(command.LinkDelete(i.Name()))
}

// physicalDriver manages interfaces the kernel owns. They can be brought
// down but never created or deleted.
type physicalDriver struct{}

func (physicalDriver) Create(i *Interface) error {
	return errors.NewInterfaceError(fmt.Sprintf("physical interface %s does not exist and cannot be created", i.Name()), nil)
}

func (physicalDriver) Teardown(*Interface) error {
	return nil
}

// L2TPv3 option keys.
const (
	OptTunnelID      = "tunnel_id"
	OptPeerTunnelID  = "peer_tunnel_id"
	OptSessionID     = "session_id"
	OptPeerSessionID = "peer_session_id"
	OptLocalPort     = "local_port"
	OptRemotePort    = "remote_port"
	OptEncapsulation = "encapsulation"
	OptLocalAddress  = "local_address"
	OptRemoteAddress = "remote_address"
)

// l2tpDriver creates a static L2TPv3 tunnel and a session on top of it. The
// session becomes the l2tpeth interface.
type l2tpDriver struct{}

func (l2tpDriver) Create(i *Interface) error {
	for _, key := range []string{OptTunnelID, OptPeerTunnelID, OptSessionID, OptPeerSessionID, OptLocalAddress, OptRemoteAddress} {
		if i.Option(key) == "" {
			return errors.NewInterfaceError(fmt.Sprintf("cannot create %s: %s not set", i.Name(), key), nil)
		}
	}

	tunnel := command.IPL2TP("add", "tunnel",
		"tunnel_id", i.Option(OptTunnelID),
		"peer_tunnel_id", i.Option(OptPeerTunnelID))
	if i.Option(OptEncapsulation) != "ip" {
		tunnel = tunnel.With(
			"udp_sport", i.Option(OptLocalPort),
			"udp_dport", i.Option(OptRemotePort))
	}
	tunnel = tunnel.With(
		"encap", i.Option(OptEncapsulation),
		"local", i.Option(OptLocalAddress),
		"remote", i.Option(OptRemoteAddress))
	if err := i.Run(tunnel); err != nil {
		return err
	}

	return i.Run(command.IPL2TP("add", "session", "name", i.Name(),
		"tunnel_id", i.Option(OptTunnelID),
		"session_id", i.Option(OptSessionID),
		"peer_session_id", i.Option(OptPeerSessionID)))
}

// Teardown deletes the session before the tunnel carrying it.
func (l2tpDriver) Teardown(i *Interface) error {
	tunnelID, sessionID := i.Option(OptTunnelID), i.Option(OptSessionID)
	if tunnelID != "" && sessionID != "" {
		if err := i.Run(command.IPL2TP("del", "session", "tunnel_id", tunnelID, "session_id", sessionID)); err != nil {
			return err
		}
	}
	if tunnelID != "" {
		return i.Run(command.IPL2TP("del", "tunnel", "tunnel_id", tunnelID))
	}
	return nil
}

// MACsec option keys.
const (
	OptSourceInterface = "source_interface"
	OptCipher          = "security_cipher"
	OptEncrypt         = "security_encrypt"
)

type macsecDriver struct{}

func (macsecDriver) Create(i *Interface) error {
	src, cipher := i.Option(OptSourceInterface), i.Option(OptCipher)
	if src == "" || cipher == "" {
		return errors.NewInterfaceError(fmt.Sprintf("cannot create %s: source interface and cipher are required", i.Name()), nil)
	}
	cmd := command.IPLink("add", "link", src, "name", i.Name(), "type", "macsec", "cipher", cipher)
	if i.Option(OptEncrypt) == "on" {
		cmd = cmd.With("encrypt", "on")
	}
	return i.Run(cmd)
}

func (macsecDriver) Teardown(i *Interface) error {
	return i.Run(command.LinkDelete(i.Name()))
}

// zeroTierDriver handles the tap devices zerotier-one creates when a
// network is joined. The daemon owns the device, so removal only clears
// the addresses assigned to it.
type zeroTierDriver struct{}

func (zeroTierDriver) Create(i *Interface) error {
	return errors.NewInterfaceError(fmt.Sprintf("ZeroTier interface %s is created by zerotier-one when a network is joined", i.Name()), nil)
}

func (zeroTierDriver) Teardown(i *Interface) error {
	return i.Run(command.IPAddr("flush", "dev", i.Name()))
}
