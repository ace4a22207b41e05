package config

import (
	"path/filepath"
	"time"
)

type Config struct {
	// General holds paths and limits shared by every command.
	General *GeneralConfig `toml:"general" json:"general"`
	// ZeroTier holds settings for the local zerotier-one service.
	ZeroTier *ZeroTierConfig `toml:"zerotier" json:"zerotier"`
	// API holds settings for the op-mode HTTP server.
	API *APIConfig `toml:"api" json:"api"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// ProposedConfig is the configuration tree snapshot being committed (TOML or YAML).
	ProposedConfig string `toml:"proposed_config" json:"proposed_config" validate:"required,abs_path_or_empty"`
	// EffectiveConfig is the configuration tree snapshot currently active (TOML or YAML).
	EffectiveConfig string `toml:"effective_config" json:"effective_config" validate:"required,abs_path_or_empty"`
	// TemplatesDir overrides the built-in templates (empty = built-in).
	TemplatesDir string `toml:"templates_dir" json:"templates_dir" validate:"abs_path_or_empty"`
	// RuntimeDir is where rendered daemon configuration is written (default: /run).
	RuntimeDir string `toml:"runtime_dir" json:"runtime_dir" validate:"required,abs_path_or_empty"`
	// CommandTimeoutSeconds bounds every external command (default: 30).
	CommandTimeoutSeconds int `toml:"command_timeout_seconds" json:"command_timeout_seconds" validate:"min=1,max=600"`
}

type ZeroTierConfig struct {
	// APIURL is the local service API (default: http://127.0.0.1:9993).
	APIURL string `toml:"api_url" json:"api_url" validate:"required,url"`
	// AuthTokenFile holds the service API token.
	AuthTokenFile string `toml:"auth_token_file" json:"auth_token_file" validate:"abs_path_or_empty"`
	// LocalConf is the service's local.conf written by the vpn-zerotier handler.
	LocalConf string `toml:"local_conf" json:"local_conf" validate:"required,abs_path_or_empty"`
	// ManageFirewall opens the primary UDP port in the INPUT chain (default: true).
	ManageFirewall bool `toml:"manage_firewall" json:"manage_firewall"`
}

type APIConfig struct {
	// ListenAddr is the op-mode API listen address (default: 127.0.0.1:8089).
	ListenAddr string `toml:"listen_addr" json:"listen_addr" validate:"required,hostport_or_empty"`
}

// CommandTimeout returns the external command timeout.
func (g *GeneralConfig) CommandTimeout() time.Duration {
	return time.Duration(g.CommandTimeoutSeconds) * time.Second
}

// MACsecConfigDir is where wpa_supplicant MACsec configuration is rendered.
func (g *GeneralConfig) MACsecConfigDir() string {
	return filepath.Join(g.RuntimeDir, "wpa_supplicant")
}

func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c._absConfigFilePath
}
