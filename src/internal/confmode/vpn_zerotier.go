package confmode

import (
	"slices"
	"strconv"
	"strings"

	"github.com/echoreply/ifconf/src/internal/command"
	"github.com/echoreply/ifconf/src/internal/configtree"
	"github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/log"
	"github.com/echoreply/ifconf/src/internal/networking"
	"github.com/echoreply/ifconf/src/internal/template"
	"github.com/echoreply/ifconf/src/internal/zerotier"
)

const (
	zeroTierServiceBase = "vpn zerotier"
	zeroTierDefaultPort = 9993
	// firewall rule comment
	zeroTierFirewallOwner = "vpn-zerotier"
)

// ZeroTierNetwork is one network the node should be joined to.
type ZeroTierNetwork struct {
	ID           string `toml:"id" validate:"zt_network_id"`
	AllowManaged bool   `toml:"allow-managed"`
	AllowGlobal  bool   `toml:"allow-global"`
	AllowDefault bool   `toml:"allow-default"`
}

// Flags returns the local settings of the network.
func (n ZeroTierNetwork) Flags() zerotier.NetworkFlags {
	return zerotier.NetworkFlags{
		AllowManaged: n.AllowManaged,
		AllowGlobal:  n.AllowGlobal,
		AllowDefault: n.AllowDefault,
	}
}

// ZeroTierServiceConfig is the intent record of the ZeroTier daemon.
type ZeroTierServiceConfig struct {
	// Deleted is set when "vpn zerotier" is absent from the proposed snapshot.
	Deleted  bool              `toml:"-"`
	Networks []ZeroTierNetwork `toml:"network" validate:"dive"`

	Local         zerotier.LocalConf `toml:"-" validate:"-"`
	MultipathMode string             `toml:"multipath-mode" validate:"omitempty,oneof=none random proportional"`

	// PrimaryPort is the port the firewall pinhole is opened for.
	PrimaryPort int `toml:"-"`
	// EffectivePrimaryPort is the port of the active configuration, 0 when
	// the service is not configured.
	EffectivePrimaryPort int `toml:"-"`
}

// ZeroTierServiceHandler manages the ZeroTier daemon: its local.conf, the
// networks it is joined to and the firewall pinhole for its primary port.
type ZeroTierServiceHandler struct {
	deps *Deps
}

func NewZeroTierServiceHandler(d *Deps) *ZeroTierServiceHandler {
	return &ZeroTierServiceHandler{deps: d}
}

func (h *ZeroTierServiceHandler) GetConfig() (*ZeroTierServiceConfig, error) {
	o := h.deps.Oracle
	rec := &ZeroTierServiceConfig{Local: zerotier.DefaultLocalConf(), PrimaryPort: zeroTierDefaultPort}

	o.SetLevel("")
	if o.ExistsEffective(zeroTierServiceBase) {
		rec.EffectivePrimaryPort = zeroTierDefaultPort
		o.SetLevel(zeroTierServiceBase)
		if v, ok := o.ReturnEffectiveValue("port primary"); ok {
			rec.EffectivePrimaryPort = atoiOr(v, zeroTierDefaultPort)
		}
		o.SetLevel("")
	}
	if !o.Exists(zeroTierServiceBase) {
		rec.Deleted = true
		return rec, nil
	}
	o.SetLevel(zeroTierServiceBase)

	for _, id := range o.ListNodes("network") {
		prefix := "network " + id
		rec.Networks = append(rec.Networks, ZeroTierNetwork{
			ID:           id,
			AllowManaged: !o.Exists(prefix + " unmanaged"),
			AllowGlobal:  o.Exists(prefix + " global"),
			AllowDefault: o.Exists(prefix + " default"),
		})
	}

	for _, cidr := range o.ListNodes("physical") {
		path, err := readPhysicalPath(o, "physical "+cidr)
		if err != nil {
			return nil, err
		}
		rec.Local.Physical[cidr] = path
	}

	for _, addr := range o.ListNodes("virtual") {
		prefix := "virtual " + addr
		peer := zerotier.VirtualPeer{Try: []string{}, Blacklist: o.ReturnValues(prefix + " blacklist path")}
		if peer.Blacklist == nil {
			peer.Blacklist = []string{}
		}
		for _, try := range o.ListNodes(prefix + " try address") {
			ports := o.ReturnValues(prefix + " try address " + try + " port")
			if len(ports) == 0 {
				peer.Try = append(peer.Try, try)
			}
			for _, port := range ports {
				peer.Try = append(peer.Try, try+"/"+port)
			}
		}
		rec.Local.Virtual[addr] = peer
	}

	settings := &rec.Local.Settings
	for node, dst := range map[string]*int{
		"port primary":   &settings.PrimaryPort,
		"port secondary": &settings.SecondaryPort,
		"port tertiary":  &settings.TertiaryPort,
	} {
		if v, ok := o.ReturnValue(node); ok {
			*dst = atoiOr(v, -1)
		}
	}
	if settings.PrimaryPort != 0 {
		rec.PrimaryPort = settings.PrimaryPort
	}
	settings.AllowSecondaryPort = !o.Exists("port only-primary")
	settings.PortMappingEnabled = !o.Exists("port no-mapping")
	if prefixes := o.ReturnValues("blacklist interface"); len(prefixes) > 0 {
		settings.InterfacePrefixBlacklist = prefixes
	}
	settings.AllowTCPFallbackRelay = !o.Exists("no-fallback-relay")
	if v, ok := o.ReturnValue("multipath-mode"); ok {
		rec.MultipathMode = v
		settings.MultipathMode = zerotier.MultipathModes[v]
	}
	return rec, nil
}

func readPhysicalPath(o configtree.Oracle, prefix string) (zerotier.PhysicalPath, error) {
	path := zerotier.PhysicalPath{Blacklist: o.Exists(prefix + " blacklist")}
	if v, ok := o.ReturnValue(prefix + " trusted-path-id"); ok {
		id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return path, errors.Validationf("invalid trusted-path-id %q on %s", v, prefix)
		}
		path.TrustedPathID = id
	}
	if v, ok := o.ReturnValue(prefix + " mtu"); ok {
		mtu, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return path, errors.Validationf("invalid mtu %q on %s", v, prefix)
		}
		path.MTU = mtu
	}
	return path, nil
}

func (h *ZeroTierServiceHandler) Verify(rec *ZeroTierServiceConfig) error {
	if rec.Deleted {
		return nil
	}
	if len(rec.Networks) == 0 {
		log.Warnf("No ZeroTier networks defined, the service will be deactivated")
		return nil
	}
	if err := checkFields(rec, "vpn zerotier"); err != nil {
		return err
	}

	settings := rec.Local.Settings
	for name, port := range map[string]int{
		"primary":   settings.PrimaryPort,
		"secondary": settings.SecondaryPort,
		"tertiary":  settings.TertiaryPort,
	} {
		if port < 0 || port > 65535 {
			return errors.Validationf("invalid ZeroTier %s port", name)
		}
	}

	for _, cidr := range sortedMapKeys(rec.Local.Physical) {
		p := rec.Local.Physical[cidr]
		if p.Blacklist && (p.TrustedPathID != 0 || p.MTU != 0) {
			return errors.Validationf("ZeroTier blacklist of %s is incompatible with other settings", cidr)
		}
	}
	for _, addr := range sortedMapKeys(rec.Local.Virtual) {
		for _, try := range rec.Local.Virtual[addr].Try {
			if !strings.Contains(try, "/") {
				return errors.Validationf("ZeroTier virtual try %s of %s requires at least 1 port", try, addr)
			}
		}
	}
	return nil
}

func (h *ZeroTierServiceHandler) Generate(rec *ZeroTierServiceConfig) error {
	if rec.Deleted || len(rec.Networks) == 0 {
		return nil
	}
	data, err := rec.Local.Marshal()
	if err != nil {
		return errors.NewRenderError("failed to encode ZeroTier local.conf", err)
	}
	return template.WriteFile(h.deps.ZeroTierLocalConf, data, template.FileOptions{Perm: 0o644})
}

func (h *ZeroTierServiceHandler) Apply(rec *ZeroTierServiceConfig) error {
	runner := h.deps.runner()

	if rec.Deleted || len(rec.Networks) == 0 {
		if !rec.Deleted {
			zt, err := h.deps.zeroTier()
			if err != nil {
				return err
			}
			joined, err := zt.Networks()
			if err != nil {
				return err
			}
			for _, n := range joined {
				if err := zt.Leave(n.ID); err != nil {
					return err
				}
			}
		}
		if _, err := runner.Run(command.Systemctl("stop", zerotier.ServiceUnit)); err != nil {
			return err
		}
		return h.syncFirewall(rec)
	}

	if _, err := runner.Run(command.Systemctl("start", zerotier.ServiceUnit)); err != nil {
		return err
	}
	zt, err := h.deps.zeroTier()
	if err != nil {
		return err
	}

	joined, err := zt.Networks()
	if err != nil {
		return err
	}
	wanted := make([]string, len(rec.Networks))
	for i, n := range rec.Networks {
		wanted[i] = n.ID
	}
	var present []string
	for _, n := range joined {
		if !slices.Contains(wanted, n.ID) {
			if err := zt.Leave(n.ID); err != nil {
				return err
			}
			continue
		}
		present = append(present, n.ID)
	}

	for _, n := range rec.Networks {
		if !slices.Contains(present, n.ID) {
			if _, err := zt.Join(n.ID); err != nil {
				return err
			}
		}
		if err := zt.SetNetworkFlags(n.ID, n.Flags()); err != nil {
			return err
		}
	}
	return h.syncFirewall(rec)
}

// syncFirewall keeps exactly one pinhole, for the configured primary port.
func (h *ZeroTierServiceHandler) syncFirewall(rec *ZeroTierServiceConfig) error {
	if !h.deps.ManageFirewall {
		return nil
	}
	active := !rec.Deleted && len(rec.Networks) > 0

	var components []networking.NetworkingComponent
	if rec.EffectivePrimaryPort != 0 && (!active || rec.EffectivePrimaryPort != rec.PrimaryPort) {
		stale, err := networking.NewPortRuleComponents(h.deps.IPTables, zeroTierFirewallOwner, rec.EffectivePrimaryPort, false)
		if err != nil {
			return errors.NewNetworkError("failed to prepare firewall rules", err)
		}
		components = append(components, stale...)
	}
	if active {
		current, err := networking.NewPortRuleComponents(h.deps.IPTables, zeroTierFirewallOwner, rec.PrimaryPort, true)
		if err != nil {
			return errors.NewNetworkError("failed to prepare firewall rules", err)
		}
		components = append(components, current...)
	}
	if err := networking.Sync(components); err != nil {
		return errors.NewNetworkError("failed to update firewall", err)
	}
	return nil
}

func sortedMapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
