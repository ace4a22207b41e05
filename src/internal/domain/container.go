package domain

import (
	"time"

	"github.com/echoreply/ifconf/src/internal/command"
	"github.com/echoreply/ifconf/src/internal/configtree"
	"github.com/echoreply/ifconf/src/internal/ifconfig"
	"github.com/echoreply/ifconf/src/internal/networking"
	"github.com/echoreply/ifconf/src/internal/template"
	"github.com/echoreply/ifconf/src/internal/zerotier"
)

// AppDependencies is a dependency injection container that holds all application dependencies.
//
// This container provides a centralized place to manage dependencies and enables:
//   - Easy testing with mock implementations
//   - Configuration-driven dependency creation
//   - Explicit dependency management instead of global state
//
// Usage:
//
//	deps, err := domain.NewAppDependencies(domain.AppConfig{
//	    ZeroTierURL: "http://127.0.0.1:9993",
//	})
//	section := deps.Section()
type AppDependencies struct {
	// Host access
	runner command.Runner
	links  networking.LinkLister
	ipt    networking.IPTablesFactory

	// Interface model
	registry *ifconfig.Registry
	section  *ifconfig.Section

	renderer       Renderer
	zeroTierClient ZeroTierClient

	proposedConfig  string
	effectiveConfig string
}

// AppConfig holds configuration for creating application dependencies.
type AppConfig struct {
	// ProposedConfig and EffectiveConfig are the config-tree snapshot files.
	ProposedConfig  string
	EffectiveConfig string

	// TemplatesDir overrides the embedded templates when not empty.
	TemplatesDir string

	// CommandTimeout bounds every external command. Zero selects the default.
	CommandTimeout time.Duration

	// ZeroTierURL is the base URL of the local service API.
	// If empty, defaults to "http://127.0.0.1:9993".
	ZeroTierURL string

	// ZeroTierToken authenticates requests to the service API.
	ZeroTierToken string

	// DisableZeroTier disables ZeroTier service integration entirely.
	DisableZeroTier bool
}

// NewAppDependencies creates a new dependency container with production implementations.
//
// This factory method creates real implementations of all interfaces using the
// provided configuration. For testing, use NewTestDependencies or inject mocks directly.
func NewAppDependencies(cfg AppConfig) (*AppDependencies, error) {
	var renderOpts []template.Option
	if cfg.TemplatesDir != "" {
		renderOpts = append(renderOpts, template.WithDir(cfg.TemplatesDir))
	}
	renderer, err := template.NewRenderer(renderOpts...)
	if err != nil {
		return nil, err
	}

	var ztClient ZeroTierClient
	if !cfg.DisableZeroTier {
		ztClient = zerotier.NewClient(cfg.ZeroTierURL, cfg.ZeroTierToken, nil)
	}

	runner := command.NewExecRunner(cfg.CommandTimeout)
	links := networking.NetlinkLinks{}
	registry := ifconfig.Default()

	return &AppDependencies{
		runner:          runner,
		links:           links,
		ipt:             networking.DefaultIPTablesFactory,
		registry:        registry,
		section:         ifconfig.NewSection(registry, ifconfig.Host{Runner: runner, Links: links}),
		renderer:        renderer,
		zeroTierClient:  ztClient,
		proposedConfig:  cfg.ProposedConfig,
		effectiveConfig: cfg.EffectiveConfig,
	}, nil
}

// TestDependencies lists the collaborators a test wants to control.
// Nil fields get working defaults where one exists.
type TestDependencies struct {
	Runner         command.Runner
	Links          networking.LinkLister
	IPTables       networking.IPTablesFactory
	Renderer       Renderer
	ZeroTierClient ZeroTierClient

	ProposedConfig  string
	EffectiveConfig string
}

// NewTestDependencies creates a dependency container with mock implementations.
//
// This is a convenience method for testing. Provide mock implementations for
// any dependencies you want to control in your tests.
func NewTestDependencies(t TestDependencies) *AppDependencies {
	registry := ifconfig.Default()
	renderer := t.Renderer
	if renderer == nil {
		if r, err := template.NewRenderer(); err == nil {
			renderer = r
		}
	}
	return &AppDependencies{
		runner:          t.Runner,
		links:           t.Links,
		ipt:             t.IPTables,
		registry:        registry,
		section:         ifconfig.NewSection(registry, ifconfig.Host{Runner: t.Runner, Links: t.Links}),
		renderer:        renderer,
		zeroTierClient:  t.ZeroTierClient,
		proposedConfig:  t.ProposedConfig,
		effectiveConfig: t.EffectiveConfig,
	}
}

// Runner returns the external command runner.
func (d *AppDependencies) Runner() command.Runner {
	return d.runner
}

// Links returns the live link table.
func (d *AppDependencies) Links() networking.LinkLister {
	return d.links
}

// IPTables returns the iptables handle factory.
func (d *AppDependencies) IPTables() networking.IPTablesFactory {
	return d.ipt
}

// Registry returns the interface variant registry.
func (d *AppDependencies) Registry() *ifconfig.Registry {
	return d.registry
}

// Section returns the interface dispatcher bound to the host.
func (d *AppDependencies) Section() *ifconfig.Section {
	return d.section
}

func (d *AppDependencies) Renderer() Renderer {
	return d.renderer
}

// ZeroTierClient returns the ZeroTier service client, or nil when disabled.
func (d *AppDependencies) ZeroTierClient() ZeroTierClient {
	return d.zeroTierClient
}

// LoadConfigTree reads the proposed and effective snapshots. A missing
// snapshot file reads as an empty tree.
func (d *AppDependencies) LoadConfigTree() (configtree.Oracle, error) {
	return configtree.LoadFiles(d.proposedConfig, d.effectiveConfig)
}
