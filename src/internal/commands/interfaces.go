package commands

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/echoreply/ifconf/src/internal/errors"
)

func newInterfacesCommand(app *AppContext) *cobra.Command {
	var sections []string

	cmd := &cobra.Command{
		Use:   "interfaces",
		Short: "List live interfaces, optionally by section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, deps, err := app.load()
			if err != nil {
				return err
			}

			section := deps.Section()
			known := section.Sections()
			for _, s := range sections {
				if !slices.Contains(known, s) {
					return errors.NewConfigError(fmt.Sprintf("unknown section %q (known: %s)", s, strings.Join(known, ", ")), nil)
				}
			}

			w := tabwriter.NewWriter(app.out(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSECTION\tMTU\tSTATE\tADDRESSES")
			for name, err := range section.Interfaces(sections...) {
				if err != nil {
					return errors.NewInterfaceError("failed to enumerate interfaces", err)
				}
				link, err := deps.Links().Link(name)
				if err != nil {
					return err
				}
				if link == nil {
					continue
				}
				variant, err := section.Klass(name)
				if err != nil {
					return err
				}

				state := "down"
				if link.Up {
					state = "up"
				}
				addrs := "-"
				if len(link.Addrs) > 0 {
					addrs = strings.Join(link.Addrs, ",")
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", name, variant.Section, link.MTU, state, addrs)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringSliceVar(&sections, "section", nil, "Only list interfaces of these sections (repeatable)")
	return cmd
}
