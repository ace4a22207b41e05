package commands

import (
	"github.com/spf13/cobra"

	"github.com/echoreply/ifconf/src/internal/api"
	"github.com/echoreply/ifconf/src/internal/config"
	"github.com/echoreply/ifconf/src/internal/log"
)

// NewRootCommand builds the ifconf command tree around app.
func NewRootCommand(app *AppContext) *cobra.Command {
	root := &cobra.Command{
		Use:           "ifconf",
		Short:         "Router interface configuration",
		Version:       api.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&app.ConfigPath, "config", config.DefaultConfigPath, "Path to configuration file")
	root.PersistentFlags().BoolVar(&app.Verbose, "verbose", false, "Enable debug logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if app.Verbose {
			log.SetVerbose(true)
		}
	}

	root.AddCommand(
		newConfCommand(app),
		newInterfacesCommand(app),
		newZeroTierCommand(app),
		newServerCommand(app),
	)
	return root
}
