package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/echoreply/ifconf/src/internal/config"
	"github.com/echoreply/ifconf/src/internal/confmode"
	"github.com/echoreply/ifconf/src/internal/domain"
	apperrors "github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/mocks"
	"github.com/echoreply/ifconf/src/internal/networking"
	"github.com/echoreply/ifconf/src/internal/zerotier"
)

const l2tpProposed = `
[interfaces.l2tpv3.l2tpeth0]
tunnel-id = "10"
peer-tunnel-id = "20"
session-id = "1"
peer-session-id = "2"
source-port = 5000
destination-port = 5000
local-ip = "192.0.2.1"
remote-ip = "192.0.2.2"
address = ["10.10.0.1/30"]
`

type cliEnv struct {
	dir      string
	proposed string
	host     *mocks.SimHost
	links    networking.LinkLister
	zt       domain.ZeroTierClient
	out      *bytes.Buffer
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	env := &cliEnv{
		dir:      dir,
		proposed: filepath.Join(dir, "proposed.toml"),
		host:     mocks.NewSimHost(),
		out:      &bytes.Buffer{},
	}

	cfg := `[general]
proposed_config = "` + env.proposed + `"
effective_config = "` + filepath.Join(dir, "effective.toml") + `"
runtime_dir = "` + dir + `"

[zerotier]
local_conf = "` + filepath.Join(dir, "local.conf") + `"
manage_firewall = false
`
	if err := os.WriteFile(filepath.Join(dir, "ifconf.conf"), []byte(cfg), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return env
}

func (e *cliEnv) writeProposed(t *testing.T, tree string) {
	t.Helper()
	if err := os.WriteFile(e.proposed, []byte(tree), 0644); err != nil {
		t.Fatalf("Failed to write proposed tree: %v", err)
	}
}

func (e *cliEnv) execute(args ...string) error {
	app := &AppContext{
		Stdout: e.out,
		NewDependencies: func(cfg *config.Config) (*domain.AppDependencies, error) {
			var links networking.LinkLister = e.host
			if e.links != nil {
				links = e.links
			}
			return domain.NewTestDependencies(domain.TestDependencies{
				Runner:          e.host,
				Links:           links,
				ZeroTierClient:  e.zt,
				ProposedConfig:  cfg.General.ProposedConfig,
				EffectiveConfig: cfg.General.EffectiveConfig,
			}), nil
		},
	}
	root := NewRootCommand(app)
	root.SetArgs(append([]string{"--config", filepath.Join(e.dir, "ifconf.conf")}, args...))
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func TestConfL2TPv3(t *testing.T) {
	env := newCLIEnv(t)
	env.writeProposed(t, l2tpProposed)
	t.Setenv(confmode.TagEnv, "l2tpeth0")

	if err := env.execute("conf", confmode.HandlerL2TPv3); err != nil {
		t.Fatalf("conf failed: %v", err)
	}

	link, ok := env.host.Links["l2tpeth0"]
	if !ok {
		t.Fatalf("Expected l2tpeth0 to be created, commands: %v", env.host.CommandStrings())
	}
	if !link.Up || link.MTU != 1488 {
		t.Errorf("Expected l2tpeth0 up with MTU 1488, got %+v", link)
	}
}

func TestConfTagFlagOverridesEnv(t *testing.T) {
	env := newCLIEnv(t)
	env.writeProposed(t, l2tpProposed)
	t.Setenv(confmode.TagEnv, "l2tpeth9")

	if err := env.execute("conf", confmode.HandlerL2TPv3, "--tag", "l2tpeth0"); err != nil {
		t.Fatalf("conf failed: %v", err)
	}
	if _, ok := env.host.Links["l2tpeth0"]; !ok {
		t.Errorf("Expected l2tpeth0 to be created")
	}
}

func TestConfErrors(t *testing.T) {
	tests := []struct {
		name     string
		tree     string
		tag      string
		args     []string
		expected error
	}{
		{
			name:     "missing tag",
			tree:     l2tpProposed,
			args:     []string{"conf", confmode.HandlerL2TPv3},
			expected: apperrors.ErrMissingIdentifier,
		},
		{
			name:     "missing vrf",
			tree:     l2tpProposed + "vrf = \"blue\"\n",
			tag:      "l2tpeth0",
			args:     []string{"conf", confmode.HandlerL2TPv3},
			expected: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCLIEnv(t)
			env.writeProposed(t, tt.tree)
			t.Setenv(confmode.TagEnv, tt.tag)

			err := env.execute(tt.args...)
			if !errors.Is(err, tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, err)
			}
			if cmds := env.host.CommandStrings(); len(cmds) != 0 {
				t.Errorf("Expected no commands, got %v", cmds)
			}
		})
	}
}

func TestConfUnknownHandler(t *testing.T) {
	env := newCLIEnv(t)
	if err := env.execute("conf", "interfaces-wireless"); err == nil {
		t.Errorf("Expected error for unknown handler")
	}
}

func TestInterfacesCommand(t *testing.T) {
	env := newCLIEnv(t)
	link := env.host.AddLink("l2tpeth0", "l2tp", 1488)
	link.Up = true
	link.Addrs = []string{"10.10.0.1/30"}
	env.host.AddLink("macsec0", "macsec", 1460)

	if err := env.execute("interfaces", "--section", "l2tpv3"); err != nil {
		t.Fatalf("interfaces failed: %v", err)
	}
	out := env.out.String()
	if !strings.Contains(out, "l2tpeth0") || !strings.Contains(out, "10.10.0.1/30") {
		t.Errorf("Expected l2tpeth0 in output, got:\n%s", out)
	}
	if strings.Contains(out, "macsec0") {
		t.Errorf("Expected macsec0 to be filtered out, got:\n%s", out)
	}

	err := env.execute("interfaces", "--section", "wireless")
	if !errors.Is(err, apperrors.ErrConfig) {
		t.Errorf("Expected config error for unknown section, got %v", err)
	}
}

type failingLinks struct{ err error }

func (f failingLinks) LinkNames() ([]string, error)             { return nil, f.err }
func (f failingLinks) Link(string) (*networking.LinkInfo, error) { return nil, f.err }

func TestInterfacesCommandLookupError(t *testing.T) {
	env := newCLIEnv(t)
	env.links = failingLinks{err: errors.New("netlink: operation not permitted")}

	err := env.execute("interfaces", "--section", "l2tpv3")
	if !errors.Is(err, apperrors.ErrInterface) {
		t.Fatalf("Expected interface error, got %v", err)
	}
	if !strings.Contains(err.Error(), "operation not permitted") {
		t.Errorf("Expected cause in error, got %v", err)
	}
	if env.out.Len() != 0 {
		t.Errorf("Expected no table on failure, got:\n%s", env.out.String())
	}
}

func TestZeroTierJoinLeave(t *testing.T) {
	const first, second = "8056c2e21c000001", "a09acf0233e4b070"
	env := newCLIEnv(t)
	zt := mocks.NewMockZeroTierClient()
	env.zt = zt

	if err := env.execute("zerotier", "join", first); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := env.execute("zerotier", "join", second); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if env.host.Services[zerotier.ServiceUnit] != "active" {
		t.Errorf("Expected service to be started before join")
	}
	if !strings.Contains(env.out.String(), "zt8056c2e2") {
		t.Errorf("Expected device name in output, got %q", env.out.String())
	}

	if err := env.execute("zerotier", "leave", first); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if env.host.Services[zerotier.ServiceUnit] != "active" {
		t.Errorf("Expected service to keep running while a network is joined")
	}

	if err := env.execute("zerotier", "leave", second); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if env.host.Services[zerotier.ServiceUnit] != "inactive" {
		t.Errorf("Expected service to be stopped after the last leave")
	}
}

func TestZeroTierCommandErrors(t *testing.T) {
	env := newCLIEnv(t)

	err := env.execute("zerotier", "show", "status")
	if !errors.Is(err, apperrors.ErrZeroTier) {
		t.Errorf("Expected ZeroTier error when disabled, got %v", err)
	}

	env.zt = mocks.NewMockZeroTierClient()
	err = env.execute("zerotier", "join", "not-a-network")
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Expected validation error for bad id, got %v", err)
	}
	if len(env.host.Commands) != 0 {
		t.Errorf("Expected no commands, got %v", env.host.CommandStrings())
	}
}

func TestZeroTierShow(t *testing.T) {
	env := newCLIEnv(t)
	zt := mocks.NewMockZeroTierClient()
	via := "10.147.17.1"
	n := zt.AddNetwork("8056c2e21c000001", "zt8056c2e2", "10.147.17.5/24")
	n.Routes = []zerotier.Route{{Target: "0.0.0.0/0", Via: &via}}
	zt.PeersState = []zerotier.Peer{{Address: "62f865ae71", Role: "PLANET", Paths: []zerotier.Path{{Address: "198.51.100.7/9993", Preferred: true}}}}
	env.zt = zt

	tests := []struct {
		args     []string
		expected []string
	}{
		{[]string{"status"}, []string{"89e92ceee5", "ONLINE"}},
		{[]string{"networks"}, []string{"8056c2e21c000001", "zt8056c2e2", "10.147.17.5/24"}},
		{[]string{"routes", "8056c2e21c000001"}, []string{"0.0.0.0/0", "10.147.17.1"}},
		{[]string{"peers"}, []string{"62f865ae71", "PLANET", "198.51.100.7/9993"}},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			env.out.Reset()
			if err := env.execute(append([]string{"zerotier", "show"}, tt.args...)...); err != nil {
				t.Fatalf("show failed: %v", err)
			}
			for _, s := range tt.expected {
				if !strings.Contains(env.out.String(), s) {
					t.Errorf("Expected %q in output, got:\n%s", s, env.out.String())
				}
			}
		})
	}

	if err := env.execute("zerotier", "show", "networks", "a09acf0233e4b070"); !errors.Is(err, apperrors.ErrZeroTier) {
		t.Errorf("Expected ZeroTier error for unknown network, got %v", err)
	}
}
