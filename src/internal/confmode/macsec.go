package confmode

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/echoreply/ifconf/src/internal/command"
	"github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/ifconfig"
	"github.com/echoreply/ifconf/src/internal/log"
	"github.com/echoreply/ifconf/src/internal/template"
)

const (
	macsecBase = "interfaces macsec"
	// 1468 bytes fit a MACsec frame; 8 more are left for 802.1ad and 802.1q tags.
	macsecDefaultMTU = 1460
	// 32 bytes of MACsec header and ICV plus 8 bytes of VLAN tags.
	macsecOverhead = 40

	macsecTemplate = "macsec/wpa_supplicant.conf.tmpl"
)

type MACsecSecurity struct {
	Cipher       string `toml:"cipher" validate:"omitempty,oneof=gcm-aes-128 gcm-aes-256"`
	Encrypt      bool   `toml:"encrypt"`
	MKACAK       string `toml:"cak" validate:"omitempty,hexadecimal"`
	MKACKN       string `toml:"ckn" validate:"omitempty,hexadecimal"`
	MKAPriority  string `toml:"priority" validate:"omitempty,numeric"`
	ReplayWindow string `toml:"replay-window" validate:"omitempty,numeric"`
}

// MACsecConfig is the intent record of one MACsec interface.
type MACsecConfig struct {
	InterfaceIntent
	SourceInterface string         `toml:"source-interface"`
	Security        MACsecSecurity `toml:"security"`
}

// ServiceUnit is the wpa_supplicant instance running MKA on the source interface.
func (c *MACsecConfig) ServiceUnit() string {
	return "wpa_supplicant-macsec@" + c.SourceInterface
}

// MACsecHandler configures MACsec interfaces and the wpa_supplicant
// instance that negotiates their keys.
//
// Verify checks, in order: bridge membership on delete; source interface
// set and present; field formats; VRF; IPv6 minimum MTU; addresses on
// bridge members; cipher set; MKA keys when encrypting; source interface
// MTU leaves room for the MACsec overhead.
type MACsecHandler struct {
	deps *Deps
}

func NewMACsecHandler(d *Deps) *MACsecHandler {
	return &MACsecHandler{deps: d}
}

// ConfigPath returns the wpa_supplicant configuration of the source interface.
func (h *MACsecHandler) ConfigPath(rec *MACsecConfig) string {
	return filepath.Join(h.deps.RuntimeDir, "wpa_supplicant", rec.SourceInterface+".conf")
}

func (h *MACsecHandler) GetConfig() (*MACsecConfig, error) {
	if err := requireTag(h.deps.Tag, "MACsec interface"); err != nil {
		return nil, err
	}
	o := h.deps.Oracle
	name := h.deps.Tag

	rec := &MACsecConfig{InterfaceIntent: readInterfaceIntent(o, macsecBase, name, macsecDefaultMTU)}
	if rec.Deleted {
		o.SetLevel(macsecBase + " " + name)
		rec.SourceInterface, _ = o.ReturnEffectiveValue("source-interface")
		return rec, nil
	}

	rec.SourceInterface, _ = o.ReturnValue("source-interface")
	rec.Security.Cipher, _ = o.ReturnValue("security cipher")
	rec.Security.Encrypt = o.Exists("security encrypt")
	rec.Security.MKACAK, _ = o.ReturnValue("security mka cak")
	rec.Security.MKACKN, _ = o.ReturnValue("security mka ckn")
	rec.Security.MKAPriority, _ = o.ReturnValue("security mka priority")
	rec.Security.ReplayWindow, _ = o.ReturnValue("security replay-window")
	return rec, nil
}

func (h *MACsecHandler) Verify(rec *MACsecConfig) error {
	if rec.Deleted {
		return verifyBridgeDelete(rec.InterfaceIntent)
	}

	links := h.deps.links()
	if err := verifySourceInterface(links, rec.Name, rec.SourceInterface); err != nil {
		return err
	}
	if err := checkFields(rec, rec.Name); err != nil {
		return err
	}
	if err := verifyVRF(links, rec.InterfaceIntent); err != nil {
		return err
	}
	if err := verifyMTUIPv6(rec.InterfaceIntent); err != nil {
		return err
	}
	if err := verifyAddress(rec.InterfaceIntent); err != nil {
		return err
	}
	if rec.Security.Cipher == "" {
		return errors.Validationf("cipher suite must be set for MACsec %q", rec.Name)
	}
	if rec.Security.Encrypt && (rec.Security.MKACAK == "" || rec.Security.MKACKN == "") {
		return errors.Validationf("missing mandatory MACsec security keys as encryption is enabled on %q", rec.Name)
	}

	lower, err := links.Link(rec.SourceInterface)
	if err != nil {
		return errors.NewInterfaceError(fmt.Sprintf("failed to read MTU of %s", rec.SourceInterface), err)
	}
	if lower != nil && lower.MTU < rec.MTU+macsecOverhead {
		return errors.Validationf("MACsec overhead does not fit into underlying device MTU, %d bytes is too small", lower.MTU)
	}
	return nil
}

func (h *MACsecHandler) Generate(rec *MACsecConfig) error {
	if rec.Deleted {
		return nil
	}

	integOnly, replayProtect := "1", ""
	if rec.Security.Encrypt {
		integOnly = "0"
	}
	if rec.Security.ReplayWindow != "" {
		replayProtect = "1"
	}
	vars := template.Vars{
		"ifname":         rec.Name,
		"mka_cak":        rec.Security.MKACAK,
		"mka_ckn":        rec.Security.MKACKN,
		"mka_priority":   rec.Security.MKAPriority,
		"integ_only":     integOnly,
		"replay_protect": replayProtect,
		"replay_window":  rec.Security.ReplayWindow,
	}
	return h.deps.Renderer.Render(h.ConfigPath(rec), macsecTemplate, vars, template.FileOptions{Perm: 0o600})
}

func (h *MACsecHandler) Apply(rec *MACsecConfig) error {
	log.Debugf("Applying MACsec interface %s", describe(rec.InterfaceIntent))
	runner := h.deps.runner()

	if rec.Deleted {
		if rec.SourceInterface != "" {
			if _, err := runner.Run(command.Systemctl("stop", rec.ServiceUnit())); err != nil {
				return err
			}
		}
		iface, err := h.deps.Section.Open(rec.Name, ifconfig.Options{ifconfig.OptSourceInterface: rec.SourceInterface})
		if err != nil {
			return err
		}
		if err := iface.Remove(); err != nil {
			return err
		}
		if rec.SourceInterface != "" {
			if err := os.Remove(h.ConfigPath(rec)); err != nil && !os.IsNotExist(err) {
				return errors.NewRenderError("failed to remove wpa_supplicant configuration", err)
			}
		}
		return nil
	}

	encrypt := "off"
	if rec.Security.Encrypt {
		encrypt = "on"
	}
	iface, err := h.deps.Section.Open(rec.Name, ifconfig.Options{
		ifconfig.OptSourceInterface: rec.SourceInterface,
		ifconfig.OptCipher:          rec.Security.Cipher,
		ifconfig.OptEncrypt:         encrypt,
	})
	if err != nil {
		return err
	}
	if err := iface.Create(); err != nil {
		return err
	}
	if err := iface.Update(rec.Settings()); err != nil {
		return err
	}
	_, err = runner.Run(command.Systemctl("restart", rec.ServiceUnit()))
	return err
}
