package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/echoreply/ifconf/src/internal/config"
	"github.com/echoreply/ifconf/src/internal/domain"
	"github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/zerotier"
)

// AppContext carries the global flags and the collaborators every command
// shares.
type AppContext struct {
	ConfigPath string
	Verbose    bool

	// NewDependencies builds the dependency container for a loaded
	// configuration. Nil selects the production container.
	NewDependencies func(cfg *config.Config) (*domain.AppDependencies, error)

	// Stdout receives command output. Nil means os.Stdout.
	Stdout io.Writer
}

func (a *AppContext) out() io.Writer {
	if a.Stdout == nil {
		return os.Stdout
	}
	return a.Stdout
}

// load reads and validates the configuration and builds the dependencies.
func (a *AppContext) load() (*config.Config, *domain.AppDependencies, error) {
	cfg, err := loadAndValidateConfigOrFail(a.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	newDeps := a.NewDependencies
	if newDeps == nil {
		newDeps = productionDependencies
	}
	deps, err := newDeps(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	return cfg, deps, nil
}

// loadAndValidateConfigOrFail loads configuration from file and validates it.
func loadAndValidateConfigOrFail(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, errors.NewConfigError("configuration validation failed", err)
	}

	return cfg, nil
}

func productionDependencies(cfg *config.Config) (*domain.AppDependencies, error) {
	var token string
	if cfg.ZeroTier.AuthTokenFile != "" {
		var err error
		if token, err = zerotier.ReadAuthToken(cfg.ZeroTier.AuthTokenFile); err != nil {
			return nil, err
		}
	}

	return domain.NewAppDependencies(domain.AppConfig{
		ProposedConfig:  cfg.General.ProposedConfig,
		EffectiveConfig: cfg.General.EffectiveConfig,
		TemplatesDir:    cfg.General.TemplatesDir,
		CommandTimeout:  cfg.General.CommandTimeout(),
		ZeroTierURL:     cfg.ZeroTier.APIURL,
		ZeroTierToken:   token,
	})
}

func zeroTierClient(deps *domain.AppDependencies) (domain.ZeroTierClient, error) {
	zt := deps.ZeroTierClient()
	if zt == nil {
		return nil, errors.NewZeroTierError("ZeroTier integration is disabled", nil)
	}
	return zt, nil
}
