package mocks

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/coreos/go-iptables/iptables"

	"github.com/echoreply/ifconf/src/internal/command"
	"github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/networking"
)

// MockRunner is a mock implementation of command.Runner.
//
// It records every command and returns RunFunc's result, or empty output.
type MockRunner struct {
	RunFunc func(cmd command.Command) (string, error)

	Commands []command.Command
}

// Run records cmd.
func (m *MockRunner) Run(cmd command.Command) (string, error) {
	m.Commands = append(m.Commands, cmd)
	if m.RunFunc != nil {
		return m.RunFunc(cmd)
	}
	return "", nil
}

// CommandStrings returns the recorded commands as text.
func (m *MockRunner) CommandStrings() []string {
	return commandStrings(m.Commands)
}

func commandStrings(cmds []command.Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.String()
	}
	return out
}

// SimLink is one link on a SimHost.
type SimLink struct {
	Name   string
	Kind   string
	MTU    int
	Up     bool
	Master string
	Alias  string
	Addrs  []string
}

// SimHost simulates the kernel link table. It implements command.Runner
// by interpreting the ip(8) and systemctl commands handlers issue, and
// networking.LinkLister by reporting the resulting state. Commands that
// would fail on a real host (adding an existing address, deleting a
// missing link) fail here too.
type SimHost struct {
	Links    map[string]*SimLink
	Tunnels  map[string]bool
	// Sessions maps "tunnel/session" to the session interface name.
	Sessions map[string]string
	Services map[string]string

	// FailFunc injects a failure before a command is applied.
	FailFunc func(cmd command.Command) error

	Commands []command.Command
}

// NewSimHost returns a host with only a loopback interface.
func NewSimHost() *SimHost {
	h := &SimHost{
		Links:    map[string]*SimLink{},
		Tunnels:  map[string]bool{},
		Sessions: map[string]string{},
		Services: map[string]string{},
	}
	h.AddLink("lo", "loopback", 65536)
	h.Links["lo"].Up = true
	return h
}

// AddLink places a link on the host without recording a command.
func (h *SimHost) AddLink(name, kind string, mtu int) *SimLink {
	l := &SimLink{Name: name, Kind: kind, MTU: mtu}
	h.Links[name] = l
	return l
}

// CommandStrings returns the recorded commands as text.
func (h *SimHost) CommandStrings() []string {
	return commandStrings(h.Commands)
}

// ResetCommands forgets recorded commands but keeps state.
func (h *SimHost) ResetCommands() {
	h.Commands = nil
}

// State renders the link table deterministically for comparisons.
func (h *SimHost) State() string {
	names := make([]string, 0, len(h.Links))
	for name := range h.Links {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		l := h.Links[name]
		fmt.Fprintf(&b, "%s kind=%s mtu=%d up=%v master=%s alias=%q addrs=%v\n",
			l.Name, l.Kind, l.MTU, l.Up, l.Master, l.Alias, l.Addrs)
	}
	tunnels := make([]string, 0, len(h.Tunnels))
	for id := range h.Tunnels {
		tunnels = append(tunnels, id)
	}
	sort.Strings(tunnels)
	fmt.Fprintf(&b, "tunnels=%v services=%v\n", tunnels, h.Services)
	return b.String()
}

func (h *SimHost) LinkNames() ([]string, error) {
	names := make([]string, 0, len(h.Links))
	for name := range h.Links {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (h *SimHost) Link(name string) (*networking.LinkInfo, error) {
	l, ok := h.Links[name]
	if !ok {
		return nil, nil
	}
	return &networking.LinkInfo{
		Name:   l.Name,
		Kind:   l.Kind,
		MTU:    l.MTU,
		Up:     l.Up,
		Master: l.Master,
		Alias:  l.Alias,
		Addrs:  slices.Clone(l.Addrs),
	}, nil
}

// Run records and applies cmd.
func (h *SimHost) Run(cmd command.Command) (string, error) {
	h.Commands = append(h.Commands, cmd)
	if h.FailFunc != nil {
		if err := h.FailFunc(cmd); err != nil {
			return "", err
		}
	}

	var msg string
	switch cmd.Name {
	case "ip":
		msg = h.runIP(cmd.Args)
	case "systemctl":
		if len(cmd.Args) == 2 {
			h.runSystemctl(cmd.Args[0], cmd.Args[1])
		}
	}
	if msg != "" {
		return "", &errors.CommandError{Command: cmd.String(), ExitStatus: 2, Output: msg}
	}
	return "", nil
}

func (h *SimHost) runSystemctl(action, unit string) {
	switch action {
	case "start", "restart", "reload-or-restart":
		h.Services[unit] = "active"
	case "stop":
		h.Services[unit] = "inactive"
	}
}

// runIP returns an error message when the command fails.
func (h *SimHost) runIP(args []string) string {
	if len(args) < 2 {
		return "usage"
	}
	switch args[0] {
	case "link":
		return h.runLink(args[1:])
	case "addr":
		return h.runAddr(args[1:])
	case "l2tp":
		return h.runL2TP(args[1:])
	}
	return ""
}

func (h *SimHost) runLink(args []string) string {
	kv := pairs(args[1:])
	switch args[0] {
	case "add":
		name := kv["dev"]
		if name == "" {
			name = kv["name"]
		}
		if _, ok := h.Links[name]; ok {
			return "RTNETLINK answers: File exists"
		}
		if lower := kv["link"]; lower != "" {
			if _, ok := h.Links[lower]; !ok {
				return fmt.Sprintf("Cannot find device %q", lower)
			}
		}
		h.AddLink(name, kv["type"], 1500)
	case "delete":
		name := kv["dev"]
		if _, ok := h.Links[name]; !ok {
			return fmt.Sprintf("Cannot find device %q", name)
		}
		delete(h.Links, name)
	case "set":
		l, ok := h.Links[kv["dev"]]
		if !ok {
			return fmt.Sprintf("Cannot find device %q", kv["dev"])
		}
		return h.setLink(l, args[3:])
	}
	return ""
}

func (h *SimHost) setLink(l *SimLink, args []string) string {
	if len(args) == 0 {
		return "missing attribute"
	}
	switch args[0] {
	case "up":
		l.Up = true
	case "down":
		l.Up = false
	case "nomaster":
		l.Master = ""
	case "mtu", "master", "alias":
		if len(args) < 2 {
			return "missing value"
		}
		switch args[0] {
		case "mtu":
			mtu, err := strconv.Atoi(args[1])
			if err != nil {
				return "invalid mtu"
			}
			l.MTU = mtu
		case "master":
			if _, ok := h.Links[args[1]]; !ok {
				return fmt.Sprintf("Device does not exist: %s", args[1])
			}
			l.Master = args[1]
		case "alias":
			l.Alias = args[1]
		}
	}
	return ""
}

func (h *SimHost) runAddr(args []string) string {
	if len(args) < 2 {
		return "usage"
	}
	action := args[0]
	if action == "flush" {
		l, ok := h.Links[pairs(args[1:])["dev"]]
		if !ok {
			return "Cannot find device"
		}
		l.Addrs = nil
		return ""
	}

	// the kernel stores addresses parsed, so spelling differences collapse
	cidr := networking.CanonicalCIDR(args[1])
	dev := pairs(args[2:])["dev"]
	l, ok := h.Links[dev]
	if !ok {
		return fmt.Sprintf("Cannot find device %q", dev)
	}
	idx := slices.IndexFunc(l.Addrs, func(a string) bool { return networking.CanonicalCIDR(a) == cidr })
	switch action {
	case "add":
		if idx >= 0 {
			return "RTNETLINK answers: File exists"
		}
		l.Addrs = append(l.Addrs, cidr)
	case "del":
		if idx < 0 {
			return "RTNETLINK answers: Cannot assign requested address"
		}
		l.Addrs = slices.Delete(l.Addrs, idx, idx+1)
	}
	return ""
}

func (h *SimHost) runL2TP(args []string) string {
	if len(args) < 2 {
		return "usage"
	}
	kv := pairs(args[2:])
	tunnel := kv["tunnel_id"]
	switch args[0] + " " + args[1] {
	case "add tunnel":
		if h.Tunnels[tunnel] {
			return "RTNETLINK answers: File exists"
		}
		h.Tunnels[tunnel] = true
	case "add session":
		if !h.Tunnels[tunnel] {
			return "RTNETLINK answers: No such file or directory"
		}
		if _, ok := h.Links[kv["name"]]; ok {
			return "RTNETLINK answers: File exists"
		}
		h.AddLink(kv["name"], "l2tp", 1500)
		h.Sessions[tunnel+"/"+kv["session_id"]] = kv["name"]
	case "del session":
		key := tunnel + "/" + kv["session_id"]
		name, ok := h.Sessions[key]
		if !ok {
			return "RTNETLINK answers: No such file or directory"
		}
		delete(h.Links, name)
		delete(h.Sessions, key)
	case "del tunnel":
		if !h.Tunnels[tunnel] {
			return "RTNETLINK answers: No such file or directory"
		}
		delete(h.Tunnels, tunnel)
		for key, name := range h.Sessions {
			if strings.HasPrefix(key, tunnel+"/") {
				delete(h.Links, name)
				delete(h.Sessions, key)
			}
		}
	}
	return ""
}

// pairs reads "key value" argument pairs; a trailing key maps to "".
func pairs(args []string) map[string]string {
	out := map[string]string{}
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			out[args[i]] = args[i+1]
		} else {
			out[args[i]] = ""
		}
	}
	return out
}

// MockIPTables is an in-memory iptables table keyed by table, chain and rule.
type MockIPTables struct {
	Rules map[string]bool
}

// NewMockIPTablesFactory returns a factory handing out one MockIPTables per
// protocol family, and the map holding them for inspection.
func NewMockIPTablesFactory() (networking.IPTablesFactory, map[iptables.Protocol]*MockIPTables) {
	tables := map[iptables.Protocol]*MockIPTables{}
	factory := func(proto iptables.Protocol) (networking.IPTables, error) {
		t, ok := tables[proto]
		if !ok {
			t = &MockIPTables{Rules: map[string]bool{}}
			tables[proto] = t
		}
		return t, nil
	}
	return factory, tables
}

func ruleKey(table, chain string, rule []string) string {
	return table + "/" + chain + "/" + strings.Join(rule, " ")
}

func (m *MockIPTables) Exists(table, chain string, rulespec ...string) (bool, error) {
	return m.Rules[ruleKey(table, chain, rulespec)], nil
}

func (m *MockIPTables) Append(table, chain string, rulespec ...string) error {
	m.Rules[ruleKey(table, chain, rulespec)] = true
	return nil
}

func (m *MockIPTables) Delete(table, chain string, rulespec ...string) error {
	delete(m.Rules, ruleKey(table, chain, rulespec))
	return nil
}
