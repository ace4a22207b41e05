package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/echoreply/ifconf/src/internal/confmode"
)

func newConfCommand(app *AppContext) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "conf <handler>",
		Short: "Commit the proposed configuration of one entity",
		Long: fmt.Sprintf(`Run get_config, verify, generate and apply for one entity.

The entity is taken from --tag or the %s environment variable.
Handlers: %s`, confmode.TagEnv, strings.Join(confmode.Names(), ", ")),
		ValidArgs: confmode.Names(),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, deps, err := app.load()
			if err != nil {
				return err
			}

			oracle, err := deps.LoadConfigTree()
			if err != nil {
				return err
			}

			if tag == "" {
				tag = confmode.TagFromEnv()
			}

			runner, err := confmode.NewRunner(args[0], &confmode.Deps{
				Tag:               tag,
				Oracle:            oracle,
				Section:           deps.Section(),
				Renderer:          deps.Renderer(),
				ZeroTier:          deps.ZeroTierClient(),
				IPTables:          deps.IPTables(),
				RuntimeDir:        cfg.General.RuntimeDir,
				ZeroTierLocalConf: cfg.ZeroTier.LocalConf,
				ManageFirewall:    cfg.ZeroTier.ManageFirewall,
			})
			if err != nil {
				return err
			}
			return runner.Run()
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "Entity to configure (default: $"+confmode.TagEnv+")")
	return cmd
}
