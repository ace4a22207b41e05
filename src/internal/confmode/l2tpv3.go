package confmode

import (
	"strconv"

	"github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/ifconfig"
	"github.com/echoreply/ifconf/src/internal/log"
)

const (
	l2tpv3Base       = "interfaces l2tpv3"
	l2tpv3DefaultMTU = 1488
)

// L2TPTunnel is the set of parameters that identify a static L2TPv3
// tunnel and its session. Changing any of them requires re-creation.
type L2TPTunnel struct {
	TunnelID      string `toml:"tunnel-id" validate:"required,numeric"`
	PeerTunnelID  string `toml:"peer-tunnel-id" validate:"required,numeric"`
	SessionID     string `toml:"session-id" validate:"required,numeric"`
	PeerSessionID string `toml:"peer-session-id" validate:"required,numeric"`
	LocalPort     int    `toml:"source-port" validate:"min=0,max=65535"`
	RemotePort    int    `toml:"destination-port" validate:"min=0,max=65535"`
	Encapsulation string `toml:"encapsulation" validate:"oneof=udp ip"`
	LocalAddress  string `toml:"local-ip" validate:"required,ip"`
	RemoteAddress string `toml:"remote-ip" validate:"required,ip"`
}

// Options converts the tunnel into interface driver options.
func (t L2TPTunnel) Options() ifconfig.Options {
	return ifconfig.Options{
		ifconfig.OptTunnelID:      t.TunnelID,
		ifconfig.OptPeerTunnelID:  t.PeerTunnelID,
		ifconfig.OptSessionID:     t.SessionID,
		ifconfig.OptPeerSessionID: t.PeerSessionID,
		ifconfig.OptLocalPort:     strconv.Itoa(t.LocalPort),
		ifconfig.OptRemotePort:    strconv.Itoa(t.RemotePort),
		ifconfig.OptEncapsulation: t.Encapsulation,
		ifconfig.OptLocalAddress:  t.LocalAddress,
		ifconfig.OptRemoteAddress: t.RemoteAddress,
	}
}

// L2TPv3Config is the intent record of one l2tpeth interface.
type L2TPv3Config struct {
	InterfaceIntent
	L2TPTunnel
	// Effective holds the active tunnel, or nil when none is configured.
	Effective *L2TPTunnel `toml:"-" validate:"-"`
}

// L2TPv3Handler configures static L2TPv3 pseudowire interfaces.
//
// Verify checks, in order: bridge membership on delete; tunnel-id,
// peer-tunnel-id, session-id and peer-session-id are set; local-ip and
// remote-ip are set; field formats; VRF; addresses on bridge members.
type L2TPv3Handler struct {
	deps *Deps
}

func NewL2TPv3Handler(d *Deps) *L2TPv3Handler {
	return &L2TPv3Handler{deps: d}
}

func (h *L2TPv3Handler) GetConfig() (*L2TPv3Config, error) {
	if err := requireTag(h.deps.Tag, "L2TPv3 interface"); err != nil {
		return nil, err
	}
	o := h.deps.Oracle
	name := h.deps.Tag

	rec := &L2TPv3Config{InterfaceIntent: readInterfaceIntent(o, l2tpv3Base, name, l2tpv3DefaultMTU)}

	o.SetLevel("")
	if o.ExistsEffective(l2tpv3Base + " " + name) {
		o.SetLevel(l2tpv3Base + " " + name)
		eff := readTunnel(o.ReturnEffectiveValue)
		rec.Effective = &eff
	}
	if rec.Deleted {
		return rec, nil
	}

	o.SetLevel(l2tpv3Base + " " + name)
	rec.L2TPTunnel = readTunnel(o.ReturnValue)
	return rec, nil
}

func readTunnel(value func(string) (string, bool)) L2TPTunnel {
	get := func(path string) string {
		v, _ := value(path)
		return v
	}
	t := L2TPTunnel{
		TunnelID:      get("tunnel-id"),
		PeerTunnelID:  get("peer-tunnel-id"),
		SessionID:     get("session-id"),
		PeerSessionID: get("peer-session-id"),
		Encapsulation: get("encapsulation"),
		LocalAddress:  get("local-ip"),
		RemoteAddress: get("remote-ip"),
	}
	if t.Encapsulation == "" {
		t.Encapsulation = "udp"
	}
	if v, ok := value("source-port"); ok {
		t.LocalPort = atoiOr(v, -1)
	}
	if v, ok := value("destination-port"); ok {
		t.RemotePort = atoiOr(v, -1)
	}
	return t
}

func (h *L2TPv3Handler) Verify(rec *L2TPv3Config) error {
	if rec.Deleted {
		return verifyBridgeDelete(rec.InterfaceIntent)
	}

	required := []struct{ value, node string }{
		{rec.TunnelID, "tunnel-id"},
		{rec.PeerTunnelID, "peer-tunnel-id"},
		{rec.SessionID, "session-id"},
		{rec.PeerSessionID, "peer-session-id"},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.Validationf("must configure the L2TPv3 %s for %q", r.node, rec.Name)
		}
	}
	if rec.LocalAddress == "" || rec.RemoteAddress == "" {
		return errors.Validationf("must configure the L2TPv3 local-ip and remote-ip for %q", rec.Name)
	}
	if err := checkFields(rec, rec.Name); err != nil {
		return err
	}
	if err := verifyVRF(h.deps.links(), rec.InterfaceIntent); err != nil {
		return err
	}
	return verifyAddress(rec.InterfaceIntent)
}

func (h *L2TPv3Handler) Generate(*L2TPv3Config) error {
	return nil
}

func (h *L2TPv3Handler) Apply(rec *L2TPv3Config) error {
	section := h.deps.Section
	log.Debugf("Applying L2TPv3 interface %s", describe(rec.InterfaceIntent))

	if rec.Deleted {
		opts := ifconfig.Options{}
		if rec.Effective != nil {
			opts = rec.Effective.Options()
		}
		iface, err := section.Open(rec.Name, opts)
		if err != nil {
			return err
		}
		return iface.Remove()
	}

	if rec.Effective != nil && *rec.Effective != rec.L2TPTunnel {
		stale, err := section.Open(rec.Name, rec.Effective.Options())
		if err != nil {
			return err
		}
		exists, err := stale.Exists()
		if err != nil {
			return err
		}
		if exists {
			log.Infof("L2TPv3 tunnel parameters of %s changed, re-creating", rec.Name)
			if err := stale.Remove(); err != nil {
				return err
			}
		}
	}

	iface, err := section.Open(rec.Name, rec.Options())
	if err != nil {
		return err
	}
	if err := iface.Create(); err != nil {
		return err
	}
	return iface.Update(rec.Settings())
}
