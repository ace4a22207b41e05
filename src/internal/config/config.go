package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/echoreply/ifconf/src/internal/log"
)

// DefaultConfigPath is used when no --config flag is given.
const DefaultConfigPath = "/etc/ifconf/ifconf.conf"

// DefaultConfig returns the configuration used for every key the file omits.
func DefaultConfig() *Config {
	return &Config{
		General: &GeneralConfig{
			ProposedConfig:        "/run/ifconf/proposed.toml",
			EffectiveConfig:       "/etc/ifconf/config.boot.toml",
			RuntimeDir:            "/run",
			CommandTimeoutSeconds: 30,
		},
		ZeroTier: &ZeroTierConfig{
			APIURL:         "http://127.0.0.1:9993",
			AuthTokenFile:  "/var/lib/zerotier-one/authtoken.secret",
			LocalConf:      "/var/lib/zerotier-one/local.conf",
			ManageFirewall: true,
		},
		API: &APIConfig{
			ListenAddr: "127.0.0.1:8089",
		},
	}
}

// LoadConfig reads the application configuration. A missing file is not an
// error: the defaults describe a stock system.
func LoadConfig(configPath string) (*Config, error) {
	configFile := filepath.Clean(configPath)

	if !filepath.IsAbs(configFile) {
		if path, err := filepath.Abs(configFile); err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %v", err)
		} else {
			configFile = path
		}
	}

	config := DefaultConfig()
	config._absConfigFilePath = configFile

	content, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("Configuration file %s not found, using defaults", configFile)
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	if err := toml.Unmarshal(content, config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			log.Errorf(derr.String())
			row, col := derr.Position()
			log.Errorf("Error at line %d, column %d", row, col)
			return nil, fmt.Errorf("failed to parse config file")
		}
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}
	config.fillMissingSections()

	log.Debugf("Configuration file path: %s", configFile)
	log.Debugf("Proposed configuration tree: %s", config.General.ProposedConfig)
	log.Debugf("Effective configuration tree: %s", config.General.EffectiveConfig)

	return config, nil
}

// fillMissingSections restores defaults for sections a file set to an empty
// inline table or otherwise left nil.
func (c *Config) fillMissingSections() {
	defaults := DefaultConfig()
	if c.General == nil {
		c.General = defaults.General
	}
	if c.ZeroTier == nil {
		c.ZeroTier = defaults.ZeroTier
	}
	if c.API == nil {
		c.API = defaults.API
	}
}

func (c *Config) SerializeConfig() (*bytes.Buffer, error) {
	buf := bytes.Buffer{}
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return &buf, nil
}
