// Package config handles the application configuration file of ifconf.
//
// This is not the router configuration tree (see package configtree); it
// tells ifconf where to find the tree snapshots, where to write rendered
// daemon configuration and how to reach the ZeroTier service.
//
// # Configuration Structure
//
//	[general]
//	proposed_config  = "/run/ifconf/proposed.toml"
//	effective_config = "/etc/ifconf/config.boot.toml"
//	runtime_dir      = "/run"
//	command_timeout_seconds = 30
//
//	[zerotier]
//	api_url         = "http://127.0.0.1:9993"
//	auth_token_file = "/var/lib/zerotier-one/authtoken.secret"
//	local_conf      = "/var/lib/zerotier-one/local.conf"
//	manage_firewall = true
//
//	[api]
//	listen_addr = "127.0.0.1:8089"
//
// # Example Usage
//
//	cfg, err := config.LoadConfig(config.DefaultConfigPath)
//	if err != nil {
//	    log.Fatalf("%v", err)
//	}
//	if err := cfg.ValidateConfig(); err != nil {
//	    log.Fatalf("%v", err)
//	}
//
// Keys missing from the file keep their defaults; a missing file yields
// DefaultConfig. ValidateStruct exposes the same validator, with the
// abs_path_or_empty, hostport_or_empty and zt_network_id tags, to other
// packages that validate their own records.
package config
