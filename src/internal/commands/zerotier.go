package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/echoreply/ifconf/src/internal/command"
	"github.com/echoreply/ifconf/src/internal/domain"
	"github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/log"
	"github.com/echoreply/ifconf/src/internal/zerotier"
)

func newZeroTierCommand(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zerotier",
		Short: "Operate the ZeroTier service",
	}

	cmd.AddCommand(
		newZeroTierJoinCommand(app),
		newZeroTierLeaveCommand(app),
		newZeroTierShowCommand(app),
	)
	return cmd
}

func networkArg(args []string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(args[0]))
	if !zerotier.ValidNetworkID(id) {
		return "", errors.Validationf("invalid ZeroTier network id %q", args[0])
	}
	return id, nil
}

// withZeroTier loads the dependencies and resolves the service client.
func withZeroTier(app *AppContext, fn func(deps *domain.AppDependencies, zt domain.ZeroTierClient) error) error {
	_, deps, err := app.load()
	if err != nil {
		return err
	}
	zt, err := zeroTierClient(deps)
	if err != nil {
		return err
	}
	return fn(deps, zt)
}

func newZeroTierJoinCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "join <network>",
		Short: "Start the service if needed and join a network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := networkArg(args)
			if err != nil {
				return err
			}
			return withZeroTier(app, func(deps *domain.AppDependencies, zt domain.ZeroTierClient) error {
				if _, err := deps.Runner().Run(command.Systemctl("start", zerotier.ServiceUnit)); err != nil {
					return err
				}
				network, err := zt.Join(id)
				if err != nil {
					return err
				}
				log.Infof("Joined ZeroTier network %s", id)
				fmt.Fprintf(app.out(), "%s %s\n", network.ID, network.PortDeviceName)
				return nil
			})
		},
	}
}

func newZeroTierLeaveCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "leave <network>",
		Short: "Leave a network and stop the service after the last one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := networkArg(args)
			if err != nil {
				return err
			}
			return withZeroTier(app, func(deps *domain.AppDependencies, zt domain.ZeroTierClient) error {
				if err := zt.Leave(id); err != nil {
					return err
				}
				log.Infof("Left ZeroTier network %s", id)

				remaining, err := zt.Networks()
				if err != nil {
					return err
				}
				if len(remaining) == 0 {
					log.Infof("No ZeroTier networks left, stopping %s", zerotier.ServiceUnit)
					_, err := deps.Runner().Run(command.Systemctl("stop", zerotier.ServiceUnit))
					return err
				}
				return nil
			})
		},
	}
}

func newZeroTierShowCommand(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show ZeroTier service state",
	}

	show := func(use, short string, args cobra.PositionalArgs, fn func(w io.Writer, zt domain.ZeroTierClient, args []string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  args,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withZeroTier(app, func(_ *domain.AppDependencies, zt domain.ZeroTierClient) error {
					w := tabwriter.NewWriter(app.out(), 0, 0, 2, ' ', 0)
					if err := fn(w, zt, args); err != nil {
						return err
					}
					return w.Flush()
				})
			},
		}
	}

	cmd.AddCommand(
		show("status", "Show node status", cobra.NoArgs, showStatus),
		show("networks [network]", "Show joined networks", cobra.MaximumNArgs(1), showNetworks),
		show("routes <network>", "Show managed routes of a network", cobra.ExactArgs(1), showRoutes),
		show("peers [address]", "Show peers and their paths", cobra.MaximumNArgs(1), showPeers),
		show("moons [id]", "Show orbited moons and their roots", cobra.MaximumNArgs(1), showMoons),
	)
	return cmd
}

func showStatus(w io.Writer, zt domain.ZeroTierClient, _ []string) error {
	status, err := zt.Status()
	if err != nil {
		return err
	}
	state := "OFFLINE"
	if status.Online {
		state = "ONLINE"
	}
	fmt.Fprintf(w, "address\t%s\n", status.Address)
	fmt.Fprintf(w, "version\t%s\n", status.Version)
	fmt.Fprintf(w, "status\t%s\n", state)
	fmt.Fprintf(w, "primary port\t%d\n", status.Config.Settings.PrimaryPort)
	return nil
}

func showNetworks(w io.Writer, zt domain.ZeroTierClient, args []string) error {
	var networks []zerotier.Network
	if len(args) == 1 {
		id, err := networkArg(args)
		if err != nil {
			return err
		}
		network, err := zt.Network(id)
		if err != nil {
			return err
		}
		if network == nil {
			return errors.NewZeroTierError(fmt.Sprintf("network %s is not joined", id), nil)
		}
		networks = append(networks, *network)
	} else {
		var err error
		if networks, err = zt.Networks(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tTYPE\tDEVICE\tADDRESSES")
	for _, n := range networks {
		addrs := "-"
		if len(n.AssignedAddresses) > 0 {
			addrs = strings.Join(n.AssignedAddresses, ",")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", n.ID, n.Name, n.Status, n.Type, n.PortDeviceName, addrs)
	}
	return nil
}

func showRoutes(w io.Writer, zt domain.ZeroTierClient, args []string) error {
	id, err := networkArg(args)
	if err != nil {
		return err
	}
	network, err := zt.Network(id)
	if err != nil {
		return err
	}
	if network == nil {
		return errors.NewZeroTierError(fmt.Sprintf("network %s is not joined", id), nil)
	}

	fmt.Fprintln(w, "TARGET\tVIA\tFLAGS\tMETRIC")
	for _, r := range network.Routes {
		via := "-"
		if r.Via != nil {
			via = *r.Via
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", r.Target, via, r.Flags, r.Metric)
	}
	return nil
}

func showPeers(w io.Writer, zt domain.ZeroTierClient, args []string) error {
	var peers []zerotier.Peer
	if len(args) == 1 {
		peer, err := zt.Peer(args[0])
		if err != nil {
			return err
		}
		if peer == nil {
			return errors.NewZeroTierError(fmt.Sprintf("peer %s not found", args[0]), nil)
		}
		peers = append(peers, *peer)
	} else {
		var err error
		if peers, err = zt.Peers(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w, "ADDRESS\tROLE\tVERSION\tLATENCY\tPATH")
	for _, p := range peers {
		path := "-"
		for _, candidate := range p.Paths {
			if candidate.Preferred || path == "-" {
				path = candidate.Address
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", p.Address, p.Role, p.Version, p.Latency, path)
	}
	return nil
}

func showMoons(w io.Writer, zt domain.ZeroTierClient, args []string) error {
	var moons []zerotier.Moon
	if len(args) == 1 {
		moon, err := zt.Moon(args[0])
		if err != nil {
			return err
		}
		if moon == nil {
			return errors.NewZeroTierError(fmt.Sprintf("moon %s not found", args[0]), nil)
		}
		moons = append(moons, *moon)
	} else {
		var err error
		if moons, err = zt.Moons(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w, "ID\tWAITING\tROOTS")
	for _, m := range moons {
		var endpoints []string
		for _, root := range m.Roots {
			endpoints = append(endpoints, root.StableEndpoints...)
		}
		roots := "-"
		if len(endpoints) > 0 {
			roots = strings.Join(endpoints, ",")
		}
		fmt.Fprintf(w, "%s\t%t\t%s\n", m.ID, m.Waiting, roots)
	}
	return nil
}
