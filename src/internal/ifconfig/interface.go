package ifconfig

import (
	"fmt"
	"maps"

	"github.com/echoreply/ifconf/src/internal/command"
	"github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/log"
	"github.com/echoreply/ifconf/src/internal/networking"
)

// Host bundles the collaborators an interface handle acts through.
type Host struct {
	Runner command.Runner
	Links  networking.LinkLister
}

// Interface is a handle on one OS network interface. It references the
// interface by name and owns nothing; every operation acts on live state.
type Interface struct {
	name    string
	variant *Variant
	opts    Options
	host    Host
}

// Name returns the OS interface name.
func (i *Interface) Name() string {
	return i.name
}

// Variant returns the variant the handle was resolved to.
func (i *Interface) Variant() *Variant {
	return i.variant
}

// Option returns a merged option value.
func (i *Interface) Option(key string) string {
	return i.opts[key]
}

// Options returns a copy of the merged options.
func (i *Interface) Options() Options {
	return maps.Clone(i.opts)
}

// Exists reports whether the OS currently has the interface. A failed
// lookup is an error, not absence.
func (i *Interface) Exists() (bool, error) {
	exists, err := networking.LinkExists(i.host.Links, i.name)
	if err != nil {
		return false, errors.NewInterfaceError(fmt.Sprintf("failed to look up interface %s", i.name), err)
	}
	return exists, nil
}

// MTU returns the current MTU of the interface.
func (i *Interface) MTU() (int, error) {
	info, err := i.link()
	if err != nil {
		return 0, err
	}
	return info.MTU, nil
}

// Create makes the interface if it does not exist. A newly created
// interface is always left administratively down.
func (i *Interface) Create() error {
	exists, err := i.Exists()
	if err != nil {
		return err
	}
	if exists {
		log.Debugf("Interface %s already exists, skipping creation", i.name)
		return nil
	}
	log.Infof("Creating interface %s (%s)", i.name, i.variant.Section)
	if err := i.variant.Driver.Create(i); err != nil {
		return err
	}
	return i.SetAdminState(false)
}

// Remove deletes the interface. Removing an absent interface is a no-op.
func (i *Interface) Remove() error {
	exists, err := i.Exists()
	if err != nil {
		return err
	}
	if !exists {
		log.Debugf("Interface %s does not exist, nothing to remove", i.name)
		return nil
	}
	log.Infof("Removing interface %s", i.name)
	if err := i.SetAdminState(false); err != nil {
		return err
	}
	return i.variant.Driver.Teardown(i)
}

// SetAdminState brings the interface up or down.
func (i *Interface) SetAdminState(up bool) error {
	return i.Run(command.LinkSetUp(i.name, up))
}

// SetMTU sets the interface MTU.
func (i *Interface) SetMTU(mtu int) error {
	return i.Run(command.LinkSetMTU(i.name, mtu))
}

// SetVRF moves the interface into vrf. An empty name detaches it.
func (i *Interface) SetVRF(vrf string) error {
	return i.Run(command.LinkSetMaster(i.name, vrf))
}

// SetAlias sets the interface description. An empty alias clears it.
func (i *Interface) SetAlias(alias string) error {
	return i.Run(command.LinkSetAlias(i.name, alias))
}

// AddAddr assigns cidr unless it is already present.
func (i *Interface) AddAddr(cidr string) error {
	info, err := i.host.Links.Link(i.name)
	if err != nil {
		return err
	}
	if info != nil && info.HasAddr(cidr) {
		return nil
	}
	return i.Run(command.AddrAdd(i.name, cidr))
}

// DelAddr removes cidr if it is assigned.
func (i *Interface) DelAddr(cidr string) error {
	info, err := i.host.Links.Link(i.name)
	if err != nil {
		return err
	}
	if info == nil || !info.HasAddr(cidr) {
		return nil
	}
	return i.Run(command.AddrDel(i.name, cidr))
}

// Settings is the desired state applied by Update.
type Settings struct {
	Description   string
	Address       []string
	AddressRemove []string
	VRF           string
	// BridgeMember skips VRF assignment; the bridge owns the master slot.
	BridgeMember bool
	// MTU of 0 leaves the current value.
	MTU     int
	Disable bool
}

// Update converges the interface onto s. Stale addresses are removed before
// new ones are added; the admin state is set last.
func (i *Interface) Update(s Settings) error {
	if err := i.SetAlias(s.Description); err != nil {
		return err
	}
	for _, addr := range s.AddressRemove {
		if err := i.DelAddr(addr); err != nil {
			return err
		}
	}
	for _, addr := range s.Address {
		if err := i.AddAddr(addr); err != nil {
			return err
		}
	}
	if !s.BridgeMember {
		if err := i.SetVRF(s.VRF); err != nil {
			return err
		}
	}
	if s.MTU > 0 {
		if err := i.SetMTU(s.MTU); err != nil {
			return err
		}
	}
	return i.SetAdminState(!s.Disable)
}

// Run executes cmd through the host runner.
func (i *Interface) Run(cmd command.Command) error {
	_, err := i.host.Runner.Run(cmd)
	return err
}

func (i *Interface) link() (*networking.LinkInfo, error) {
	info, err := i.host.Links.Link(i.name)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, errors.NewInterfaceError(fmt.Sprintf("interface %s does not exist", i.name), nil)
	}
	return info, nil
}
