package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateConfig_Defaults(t *testing.T) {
	if err := DefaultConfig().ValidateConfig(); err != nil {
		t.Errorf("Expected defaults to validate, got: %v", err)
	}
}

func TestValidateConfig_MissingSections(t *testing.T) {
	cfg := &Config{}

	err := cfg.ValidateConfig()
	var ve ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("Expected ValidationErrors, got %v", err)
	}
	if len(ve) != 3 {
		t.Errorf("Expected 3 errors for missing sections, got %d: %v", len(ve), ve)
	}
}

func TestValidateConfig_FieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		fieldPath string
		message   string
	}{
		{
			name:      "relative runtime dir",
			mutate:    func(c *Config) { c.General.RuntimeDir = "run" },
			fieldPath: "general.runtime_dir",
			message:   "absolute path",
		},
		{
			name:      "timeout out of range",
			mutate:    func(c *Config) { c.General.CommandTimeoutSeconds = 0 },
			fieldPath: "general.command_timeout_seconds",
			message:   ">= 1",
		},
		{
			name:      "bad api url",
			mutate:    func(c *Config) { c.ZeroTier.APIURL = "not a url" },
			fieldPath: "zerotier.api_url",
			message:   "valid URL",
		},
		{
			name:      "bad listen address",
			mutate:    func(c *Config) { c.API.ListenAddr = "8089" },
			fieldPath: "api.listen_addr",
			message:   "host:port",
		},
		{
			name: "same snapshots",
			mutate: func(c *Config) {
				c.General.ProposedConfig = "/etc/ifconf/config.toml"
				c.General.EffectiveConfig = "/etc/ifconf/config.toml"
			},
			fieldPath: "general.proposed_config",
			message:   "must differ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.ValidateConfig()
			var ve ValidationErrors
			if !errors.As(err, &ve) {
				t.Fatalf("Expected ValidationErrors, got %v", err)
			}
			found := false
			for _, e := range ve {
				if e.FieldPath == tt.fieldPath && strings.Contains(e.Message, tt.message) {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected error on %s containing %q, got %v", tt.fieldPath, tt.message, ve)
			}
		})
	}
}

func TestValidateStruct_NetworkID(t *testing.T) {
	type record struct {
		Network string `toml:"network" validate:"required,zt_network_id"`
	}

	if errs := ValidateStruct(&record{Network: "8056c2e21c000001"}, "zt0"); errs != nil {
		t.Errorf("Expected valid network id, got %v", errs)
	}

	errs := ValidateStruct(&record{Network: "8056c2e2"}, "zt0")
	if len(errs) != 1 {
		t.Fatalf("Expected one error, got %v", errs)
	}
	if errs[0].ItemName != "zt0" || errs[0].FieldPath != "network" {
		t.Errorf("Unexpected error context %+v", errs[0])
	}
	if !strings.Contains(errs.Error(), "[zt0] network: must be a 16 digit hexadecimal ZeroTier network id") {
		t.Errorf("Unexpected message %q", errs.Error())
	}
}

func TestValidationErrors_Error(t *testing.T) {
	if got := (ValidationErrors{}).Error(); got != "no validation errors" {
		t.Errorf("Unexpected empty message %q", got)
	}
	ve := ValidationErrors{{FieldPath: "general", Message: "missing"}}
	if !strings.Contains(ve.Error(), "1. general: missing") {
		t.Errorf("Unexpected message %q", ve.Error())
	}
}
