// Package commands implements the ifconf command line.
//
// The command tree is built with cobra by NewRootCommand. Every command
// loads the application configuration from --config, builds the
// dependency container and delegates to the packages doing the work:
//
//   - conf <handler>: run one reconciliation pipeline (confmode)
//   - interfaces [--section S]: list live interfaces (ifconfig.Section)
//   - zerotier join|leave <network>: op-mode membership changes
//   - zerotier show status|networks|routes|peers|moons: op-mode queries
//   - server: the read-only HTTP API (api)
//
// Errors are returned to the caller, which prints them and exits with
// status 1.
//
// # Example Usage
//
//	app := &commands.AppContext{}
//	root := commands.NewRootCommand(app)
//	root.SetArgs([]string{"conf", "interfaces-l2tpv3", "--tag", "l2tpeth0"})
//	if err := root.Execute(); err != nil {
//	    log.Fatalf("%v", err)
//	}
package commands
