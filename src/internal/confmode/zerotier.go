package confmode

import (
	"fmt"

	"github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/ifconfig"
	"github.com/echoreply/ifconf/src/internal/log"
)

const (
	zeroTierBase = "interfaces zerotier"
	// applied even when unset; zerotier-one itself creates devices at 2800
	zeroTierDefaultMTU = 1500
)

// ZeroTierInterfaceConfig is the intent record of one ZeroTier interface.
// Name is the configured name; the OS device is named by zerotier-one and
// looked up from Network at apply time.
type ZeroTierInterfaceConfig struct {
	InterfaceIntent
	Network string `toml:"network" validate:"omitempty,zt_network_id"`
	// NetworkInterfaces lists every configured interface bound to Network.
	NetworkInterfaces []string `toml:"-"`
}

// ZeroTierInterfaceHandler binds addresses and link settings to the
// device of a joined ZeroTier network.
//
// Verify checks, in order: bridge membership on delete; network set;
// field formats; network joined; no other interface bound to the network;
// no static address on a managed network; VRF; addresses on bridge members.
type ZeroTierInterfaceHandler struct {
	deps *Deps
}

func NewZeroTierInterfaceHandler(d *Deps) *ZeroTierInterfaceHandler {
	return &ZeroTierInterfaceHandler{deps: d}
}

func (h *ZeroTierInterfaceHandler) GetConfig() (*ZeroTierInterfaceConfig, error) {
	if err := requireTag(h.deps.Tag, "ZeroTier interface"); err != nil {
		return nil, err
	}
	o := h.deps.Oracle
	name := h.deps.Tag

	rec := &ZeroTierInterfaceConfig{InterfaceIntent: readInterfaceIntent(o, zeroTierBase, name, zeroTierDefaultMTU)}
	if rec.Deleted {
		o.SetLevel(zeroTierBase + " " + name)
		rec.Network, _ = o.ReturnEffectiveValue("network")
		return rec, nil
	}
	rec.Network, _ = o.ReturnValue("network")

	o.SetLevel(zeroTierBase)
	for _, other := range o.ListNodes("") {
		if network, _ := o.ReturnValue(other + " network"); network != "" && network == rec.Network {
			rec.NetworkInterfaces = append(rec.NetworkInterfaces, other)
		}
	}
	return rec, nil
}

func (h *ZeroTierInterfaceHandler) Verify(rec *ZeroTierInterfaceConfig) error {
	if rec.Deleted {
		return verifyBridgeDelete(rec.InterfaceIntent)
	}
	if rec.Network == "" {
		return errors.Validationf("interface %q must belong to a network", rec.Name)
	}
	if err := checkFields(rec, rec.Name); err != nil {
		return err
	}

	zt, err := h.deps.zeroTier()
	if err != nil {
		return err
	}
	network, err := zt.Network(rec.Network)
	if err != nil {
		return err
	}
	if network == nil || network.ID != rec.Network {
		return errors.Validationf("network %q on interface %q doesn't exist", rec.Network, rec.Name)
	}
	if len(rec.NetworkInterfaces) != 1 {
		return errors.Validationf("only one interface can belong to network %q", rec.Network)
	}
	if network.AllowManaged && len(rec.Address) > 0 {
		return errors.Validationf("cannot assign address to managed interface %q", rec.Name)
	}
	if err := verifyVRF(h.deps.links(), rec.InterfaceIntent); err != nil {
		return err
	}
	return verifyAddress(rec.InterfaceIntent)
}

func (h *ZeroTierInterfaceHandler) Generate(*ZeroTierInterfaceConfig) error {
	return nil
}

func (h *ZeroTierInterfaceHandler) Apply(rec *ZeroTierInterfaceConfig) error {
	log.Debugf("Applying ZeroTier interface %s", describe(rec.InterfaceIntent))

	zt, err := h.deps.zeroTier()
	if err != nil {
		return err
	}
	device := ""
	if rec.Network != "" {
		if device, err = zt.RealInterface(rec.Network); err != nil {
			return err
		}
	}
	if device == "" {
		if rec.Deleted {
			log.Infof("ZeroTier network of %s is gone, nothing to remove", rec.Name)
			return nil
		}
		return errors.NewInterfaceError(fmt.Sprintf(
			"unable to find underlying interface for %q, ZeroTier might not be running or network %s hasn't been joined",
			rec.Name, rec.Network), nil)
	}

	iface, err := h.deps.Section.Open(device, ifconfig.Options{})
	if err != nil {
		return err
	}
	if rec.Deleted {
		return iface.Remove()
	}
	return iface.Update(rec.Settings())
}
