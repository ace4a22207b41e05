package template

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	apperrors "github.com/echoreply/ifconf/src/internal/errors"
)

func newTestRenderer(t *testing.T, files map[string]string, opts ...Option) *Renderer {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}
	r, err := NewRenderer(append([]Option{WithFS(fsys)}, opts...)...)
	if err != nil {
		t.Fatalf("NewRenderer() error: %v", err)
	}
	return r
}

func TestRenderStringSubstitution(t *testing.T) {
	r := newTestRenderer(t, map[string]string{
		"a.tmpl": "net {{ net | address_from_cidr }} mask {{net|netmask_from_cidr}}\nname={{ name }}\n",
	})

	got, err := r.RenderString("a.tmpl", Vars{"net": "192.0.2.0/24", "name": "zt0"})
	if err != nil {
		t.Fatalf("RenderString() error: %v", err)
	}
	expected := "net 192.0.2.0 mask 255.255.255.0\nname=zt0\n"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestOptionalTagDropsLine(t *testing.T) {
	r := newTestRenderer(t, map[string]string{
		"a.tmpl": "keep\n  key={{ key? }}\nlast={{ last? }}",
	})

	got, err := r.RenderString("a.tmpl", Vars{"last": "x"})
	if err != nil {
		t.Fatalf("RenderString() error: %v", err)
	}
	if got != "keep\nlast=x" {
		t.Errorf("Expected optional line to be dropped, got %q", got)
	}
}

func TestUndefinedVariableFails(t *testing.T) {
	r := newTestRenderer(t, map[string]string{"a.tmpl": "{{ missing }}"})

	_, err := r.RenderString("a.tmpl", Vars{})
	if !errors.Is(err, apperrors.ErrRender) {
		t.Errorf("Expected render error, got %v", err)
	}
}

func TestUnknownFilterFails(t *testing.T) {
	r := newTestRenderer(t, map[string]string{"a.tmpl": "{{ v | nope }}"})

	if _, err := r.RenderString("a.tmpl", Vars{"v": "x"}); err == nil {
		t.Errorf("Expected error for unknown filter")
	}
}

func TestFilterRegistration(t *testing.T) {
	upper := func(s string) (string, error) { return strings.ToUpper(s), nil }

	t.Run("duplicate name at construction", func(t *testing.T) {
		_, err := NewRenderer(WithFilter("address_from_cidr", upper))
		if !errors.Is(err, apperrors.ErrDuplicateRegistration) {
			t.Errorf("Expected duplicate registration error, got %v", err)
		}
	})

	t.Run("register before render", func(t *testing.T) {
		r := newTestRenderer(t, map[string]string{"a.tmpl": "{{ v | upper }}"})
		if err := r.RegisterFilter("upper", upper); err != nil {
			t.Fatalf("RegisterFilter() error: %v", err)
		}
		if err := r.RegisterFilter("upper", upper); !errors.Is(err, apperrors.ErrDuplicateRegistration) {
			t.Errorf("Expected duplicate registration error, got %v", err)
		}
		got, err := r.RenderString("a.tmpl", Vars{"v": "abc"})
		if err != nil || got != "ABC" {
			t.Errorf("Expected ABC, got %q (%v)", got, err)
		}
	})

	t.Run("register after render", func(t *testing.T) {
		r := newTestRenderer(t, map[string]string{"a.tmpl": "x"})
		if _, err := r.RenderString("a.tmpl", nil); err != nil {
			t.Fatalf("RenderString() error: %v", err)
		}
		if err := r.RegisterFilter("upper", upper); err != ErrFiltersFrozen {
			t.Errorf("Expected ErrFiltersFrozen, got %v", err)
		}
	})
}

func TestCIDRFilters(t *testing.T) {
	tests := []struct {
		in      string
		address string
		netmask string
		wantErr bool
	}{
		{in: "192.0.2.0/24", address: "192.0.2.0", netmask: "255.255.255.0"},
		{in: "2001:db8::/48", address: "2001:db8::", netmask: "ffff:ffff:ffff::"},
		{in: "10.0.0.0/8", address: "10.0.0.0", netmask: "255.0.0.0"},
		{in: "192.0.2.1/24", wantErr: true},
		{in: "garbage", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			addr, err := AddressFromCIDR(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AddressFromCIDR() error = %v, wantErr %v", err, tt.wantErr)
			}
			mask, _ := NetmaskFromCIDR(tt.in)
			if tt.wantErr {
				return
			}
			if addr != tt.address {
				t.Errorf("Expected address %s, got %s", tt.address, addr)
			}
			if mask != tt.netmask {
				t.Errorf("Expected netmask %s, got %s", tt.netmask, mask)
			}
		})
	}
}

func TestRenderWritesFile(t *testing.T) {
	r := newTestRenderer(t, map[string]string{"a.tmpl": "value={{ v }}\n"})
	dest := filepath.Join(t.TempDir(), "nested", "dir", "out.conf")

	if err := r.Render(dest, "a.tmpl", Vars{"v": "1"}, FileOptions{Perm: 0o600}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if string(data) != "value=1\n" {
		t.Errorf("Unexpected content %q", data)
	}
	info, _ := os.Stat(dest)
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestRenderFailureKeepsExistingFile(t *testing.T) {
	r := newTestRenderer(t, map[string]string{"a.tmpl": "{{ missing }}"})
	dest := filepath.Join(t.TempDir(), "out.conf")
	if err := os.WriteFile(dest, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := r.Render(dest, "a.tmpl", Vars{}, FileOptions{}); err == nil {
		t.Fatalf("Expected render error")
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "old" {
		t.Errorf("Expected existing file untouched, got %q", data)
	}
}

func TestEmbeddedMACsecTemplate(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error: %v", err)
	}

	got, err := r.RenderString("macsec/wpa_supplicant.conf.tmpl", Vars{
		"ifname":     "macsec0",
		"mka_cak":    "0123456789abcdef0123456789abcdef",
		"mka_ckn":    "ffeeddccbbaa99887766554433221100",
		"integ_only": "0",
	})
	if err != nil {
		t.Fatalf("RenderString() error: %v", err)
	}
	for _, want := range []string{"mka_cak=0123456789abcdef0123456789abcdef", "macsec_integ_only=0", "eapol_version=3"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in output:\n%s", want, got)
		}
	}
	if strings.Contains(got, "macsec_replay_window") || strings.Contains(got, "mka_priority") {
		t.Errorf("Expected unset optional lines to be dropped:\n%s", got)
	}
}
