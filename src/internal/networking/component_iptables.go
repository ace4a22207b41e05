package networking

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coreos/go-iptables/iptables"

	"github.com/echoreply/ifconf/src/internal/log"
)

// IPTables is the subset of *iptables.IPTables used by rule components.
type IPTables interface {
	Exists(table, chain string, rulespec ...string) (bool, error)
	Append(table, chain string, rulespec ...string) error
	Delete(table, chain string, rulespec ...string) error
}

// IPTablesFactory opens a handle for one protocol family.
type IPTablesFactory func(proto iptables.Protocol) (IPTables, error)

// DefaultIPTablesFactory opens real iptables/ip6tables handles.
func DefaultIPTablesFactory(proto iptables.Protocol) (IPTables, error) {
	return iptables.NewWithProtocol(proto)
}

// PortRuleComponent accepts inbound UDP traffic to a local port.
type PortRuleComponent struct {
	ComponentBase
	ipt         IPTables
	proto       iptables.Protocol
	table       string
	chain       string
	rule        []string
	shouldExist bool
}

// NewPortRuleComponents builds one INPUT accept rule per protocol family for
// a UDP port. shouldExist selects whether Sync installs or removes them.
func NewPortRuleComponents(factory IPTablesFactory, owner string, port int, shouldExist bool) ([]NetworkingComponent, error) {
	if factory == nil {
		factory = DefaultIPTablesFactory
	}
	var components []NetworkingComponent
	for _, proto := range []iptables.Protocol{iptables.ProtocolIPv4, iptables.ProtocolIPv6} {
		ipt, err := factory(proto)
		if err != nil {
			return nil, fmt.Errorf("failed to open iptables: %w", err)
		}
		components = append(components, &PortRuleComponent{
			ComponentBase: ComponentBase{
				owner:         owner,
				componentType: ComponentTypeIPTables,
				description:   fmt.Sprintf("Accept inbound UDP port %d for %s", port, owner),
			},
			ipt:   ipt,
			proto: proto,
			table: "filter",
			chain: "INPUT",
			rule: []string{
				"-p", "udp", "--dport", strconv.Itoa(port),
				"-m", "comment", "--comment", owner,
				"-j", "ACCEPT",
			},
			shouldExist: shouldExist,
		})
	}
	return components, nil
}

func (c *PortRuleComponent) IsExists() (bool, error) {
	return c.ipt.Exists(c.table, c.chain, c.rule...)
}

func (c *PortRuleComponent) ShouldExist() bool {
	return c.shouldExist
}

func (c *PortRuleComponent) CreateIfNotExists() error {
	exists, err := c.IsExists()
	if err != nil {
		return fmt.Errorf("failed to check if iptables rule exists: %w", err)
	}
	if exists {
		return nil
	}
	log.Infof("Adding iptables rule [%s]", c.GetCommand())
	if err := c.ipt.Append(c.table, c.chain, c.rule...); err != nil {
		return fmt.Errorf("failed to add iptables rule: %w", err)
	}
	return nil
}

func (c *PortRuleComponent) DeleteIfExists() error {
	exists, err := c.IsExists()
	if err != nil {
		return fmt.Errorf("failed to check if iptables rule exists: %w", err)
	}
	if !exists {
		return nil
	}
	log.Infof("Deleting iptables rule [%s]", c.GetCommand())
	if err := c.ipt.Delete(c.table, c.chain, c.rule...); err != nil {
		return fmt.Errorf("failed to delete iptables rule: %w", err)
	}
	return nil
}

func (c *PortRuleComponent) GetCommand() string {
	bin := "iptables"
	if c.proto == iptables.ProtocolIPv6 {
		bin = "ip6tables"
	}
	return fmt.Sprintf("%s -t %s -C %s %s", bin, c.table, c.chain, strings.Join(c.rule, " "))
}
