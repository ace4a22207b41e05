// Package networking provides read access to live interface state and the
// firewall components managed alongside interfaces.
//
// # Link state
//
// LinkLister is the query surface used by interface handles and verify
// steps: existence, MTU, master and assigned addresses. NetlinkLinks
// implements it over rtnetlink; tests use a simulated host instead.
//
// # Components
//
// A NetworkingComponent is something that should either exist or not on
// the host. Sync walks a slice of components and creates or deletes each
// one accordingly:
//
//	rules, err := networking.NewPortRuleComponents(nil, "zerotier-one", 9993, true)
//	if err != nil {
//	    return err
//	}
//	if err := networking.Sync(rules); err != nil {
//	    return err
//	}
//
// PortRuleComponent opens a UDP port in the filter/INPUT chain for both
// IPv4 and IPv6 through go-iptables.
package networking
