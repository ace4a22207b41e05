package confmode

import (
	"fmt"
	"net/netip"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/echoreply/ifconf/src/internal/config"
	"github.com/echoreply/ifconf/src/internal/configtree"
	"github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/ifconfig"
	"github.com/echoreply/ifconf/src/internal/networking"
)

// TagEnv names the environment variable carrying the entity a handler
// configures, e.g. the interface name.
const TagEnv = "IFCONF_TAGNODE"

// TagFromEnv returns the entity name from the environment, or "".
func TagFromEnv() string {
	return strings.TrimSpace(os.Getenv(TagEnv))
}

// InterfaceIntent holds the settings shared by every interface record.
type InterfaceIntent struct {
	Name          string   `toml:"name"`
	Deleted       bool     `toml:"-"`
	Description   string   `toml:"description"`
	Address       []string `toml:"address" validate:"dive,cidr"`
	AddressRemove []string `toml:"-"`
	MTU           int      `toml:"mtu" validate:"min=68,max=16000"`
	VRF           string   `toml:"vrf"`
	Disable       bool     `toml:"disable"`
	// BridgeMember is the bridge listing this interface as a member, or "".
	BridgeMember string `toml:"-"`
}

// Settings converts the intent into the arguments of Interface.Update.
func (i InterfaceIntent) Settings() ifconfig.Settings {
	return ifconfig.Settings{
		Description:   i.Description,
		Address:       slices.Clone(i.Address),
		AddressRemove: slices.Clone(i.AddressRemove),
		VRF:           i.VRF,
		BridgeMember:  i.BridgeMember != "",
		MTU:           i.MTU,
		Disable:       i.Disable,
	}
}

// readInterfaceIntent reads the common interface nodes below base (e.g.
// "interfaces l2tpv3"). The oracle is left at the interface's level when
// the interface exists in the proposed snapshot.
func readInterfaceIntent(o configtree.Oracle, base, name string, defaultMTU int) InterfaceIntent {
	intent := InterfaceIntent{
		Name:         name,
		MTU:          defaultMTU,
		BridgeMember: bridgeMember(o, name),
	}

	o.SetLevel("")
	if !o.Exists(base + " " + name) {
		intent.Deleted = true
		return intent
	}
	o.SetLevel(base + " " + name)

	intent.Address = canonicalAddrs(o.ReturnValues("address"))
	intent.Description, _ = o.ReturnValue("description")
	intent.Disable = o.Exists("disable")
	intent.VRF, _ = o.ReturnValue("vrf")
	if v, ok := o.ReturnValue("mtu"); ok {
		intent.MTU = atoiOr(v, 0)
	}
	intent.AddressRemove = listDiff(canonicalAddrs(o.ReturnEffectiveValues("address")), intent.Address)
	return intent
}

// canonicalAddrs rewrites addresses in the form the kernel reports them,
// so both the diff and the live check compare like with like.
func canonicalAddrs(addrs []string) []string {
	if addrs == nil {
		return nil
	}
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = networking.CanonicalCIDR(a)
	}
	return out
}

// bridgeMember returns the bridge whose member list contains name, or "".
func bridgeMember(o configtree.Oracle, name string) string {
	level := o.Level()
	defer o.SetLevel(level)

	o.SetLevel("interfaces bridge")
	for _, bridge := range o.ListNodes("") {
		if slices.Contains(o.ReturnValues(bridge+" member interface"), name) {
			return bridge
		}
	}
	return ""
}

// listDiff returns the items of a not in b, keeping the order of a.
func listDiff(a, b []string) []string {
	var out []string
	for _, item := range a {
		if !slices.Contains(b, item) {
			out = append(out, item)
		}
	}
	return out
}

// atoiOr parses s, returning fallback when it is not a number.
func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

func requireTag(tag, what string) error {
	if tag == "" {
		return errors.NewMissingIdentifierError(what)
	}
	return nil
}

// checkFields runs the struct validator over rec and reports the first
// failure only.
func checkFields(rec any, name string) error {
	if errs := config.ValidateStruct(rec, name); len(errs) > 0 {
		first := errs[0]
		return errors.Validationf("invalid %s on %q: %s", first.FieldPath, name, first.Message)
	}
	return nil
}

func verifyBridgeDelete(i InterfaceIntent) error {
	if i.BridgeMember != "" {
		return errors.Validationf("interface %q cannot be deleted as it is a member of bridge %q", i.Name, i.BridgeMember)
	}
	return nil
}

// verifyVRF checks the VRF exists on the live system and does not collide
// with bridge membership.
func verifyVRF(links networking.LinkLister, i InterfaceIntent) error {
	if i.VRF == "" {
		return nil
	}
	exists, err := networking.LinkExists(links, i.VRF)
	if err != nil {
		return errors.NewInterfaceError(fmt.Sprintf("failed to look up VRF %q", i.VRF), err)
	}
	if !exists {
		return errors.Validationf("VRF %q does not exist", i.VRF)
	}
	if i.BridgeMember != "" {
		return errors.Validationf("interface %q cannot be member of VRF %q and bridge %q at the same time", i.Name, i.VRF, i.BridgeMember)
	}
	return nil
}

// verifyAddress refuses addresses on bridge members.
func verifyAddress(i InterfaceIntent) error {
	if i.BridgeMember != "" && len(i.Address) > 0 {
		return errors.Validationf("cannot assign address to interface %q as it is a member of bridge %q", i.Name, i.BridgeMember)
	}
	return nil
}

// verifyMTUIPv6 requires the IPv6 minimum MTU when an IPv6 address is configured.
func verifyMTUIPv6(i InterfaceIntent) error {
	const minIPv6MTU = 1280
	if i.MTU >= minIPv6MTU {
		return nil
	}
	for _, addr := range i.Address {
		if p, err := netip.ParsePrefix(addr); err == nil && p.Addr().Is6() {
			return errors.Validationf("IPv6 address %s is configured on interface %q, the required minimum MTU is %d", addr, i.Name, minIPv6MTU)
		}
	}
	return nil
}

func verifySourceInterface(links networking.LinkLister, name, source string) error {
	if source == "" {
		return errors.Validationf("physical source-interface required for %q", name)
	}
	exists, err := networking.LinkExists(links, source)
	if err != nil {
		return errors.NewInterfaceError(fmt.Sprintf("failed to look up source interface %q", source), err)
	}
	if !exists {
		return errors.Validationf("source interface %q does not exist", source)
	}
	return nil
}

func describe(i InterfaceIntent) string {
	if i.Deleted {
		return fmt.Sprintf("%s (deleted)", i.Name)
	}
	return i.Name
}
