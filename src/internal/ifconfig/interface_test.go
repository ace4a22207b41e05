package ifconfig

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/echoreply/ifconf/src/internal/command"
	apperrors "github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/mocks"
)

func newTestSection(t *testing.T) (*Section, *mocks.SimHost) {
	t.Helper()
	host := mocks.NewSimHost()
	return NewSection(Default(), Host{Runner: host, Links: host}), host
}

func l2tpOptions() Options {
	return Options{
		OptTunnelID:      "10",
		OptPeerTunnelID:  "20",
		OptLocalPort:     "5000",
		OptRemotePort:    "5000",
		OptLocalAddress:  "192.0.2.1",
		OptRemoteAddress: "192.0.2.2",
		OptSessionID:     "1",
		OptPeerSessionID: "2",
	}
}

func TestL2TPCreate(t *testing.T) {
	section, host := newTestSection(t)

	iface, err := section.Open("l2tpeth0", l2tpOptions())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := iface.Create(); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	expected := []string{
		"ip l2tp add tunnel tunnel_id 10 peer_tunnel_id 20 udp_sport 5000 udp_dport 5000 encap udp local 192.0.2.1 remote 192.0.2.2",
		"ip l2tp add session name l2tpeth0 tunnel_id 10 session_id 1 peer_session_id 2",
		"ip link set dev l2tpeth0 down",
	}
	if got := host.CommandStrings(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Unexpected commands:\n got: %v\nwant: %v", got, expected)
	}
	if exists, err := iface.Exists(); err != nil || !exists {
		t.Errorf("Expected l2tpeth0 to exist after Create, got %v (%v)", exists, err)
	}
}

func TestL2TPCreateIPEncapsulationOmitsPorts(t *testing.T) {
	section, host := newTestSection(t)
	opts := l2tpOptions()
	opts[OptEncapsulation] = "ip"

	iface, _ := section.Open("l2tpeth1", opts)
	if err := iface.Create(); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	expected := "ip l2tp add tunnel tunnel_id 10 peer_tunnel_id 20 encap ip local 192.0.2.1 remote 192.0.2.2"
	if got := host.CommandStrings()[0]; got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestL2TPRemove(t *testing.T) {
	section, host := newTestSection(t)
	iface, _ := section.Open("l2tpeth0", l2tpOptions())
	if err := iface.Create(); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	host.ResetCommands()

	if err := iface.Remove(); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	expected := []string{
		"ip link set dev l2tpeth0 down",
		"ip l2tp del session tunnel_id 10 session_id 1",
		"ip l2tp del tunnel tunnel_id 10",
	}
	if got := host.CommandStrings(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Unexpected commands:\n got: %v\nwant: %v", got, expected)
	}
	if exists, _ := iface.Exists(); exists || len(host.Tunnels) != 0 {
		t.Errorf("Expected session and tunnel to be gone, state:\n%s", host.State())
	}
}

func TestRemoveAbsentInterfaceIsNoop(t *testing.T) {
	for _, name := range []string{"l2tpeth9", "macsec3", "dum4", "ztabcdef12"} {
		t.Run(name, func(t *testing.T) {
			section, host := newTestSection(t)
			iface, err := section.Open(name, l2tpOptions())
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			if err := iface.Remove(); err != nil {
				t.Errorf("Remove() error: %v", err)
			}
			if len(host.Commands) != 0 {
				t.Errorf("Expected no commands, got %v", host.CommandStrings())
			}
		})
	}
}

func TestCreateIsIdempotent(t *testing.T) {
	section, host := newTestSection(t)
	iface, _ := section.Open("dum0", nil)

	if err := iface.Create(); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	first := host.State()
	host.ResetCommands()

	if err := iface.Create(); err != nil {
		t.Fatalf("second Create() error: %v", err)
	}
	if len(host.Commands) != 0 {
		t.Errorf("Expected second Create to issue nothing, got %v", host.CommandStrings())
	}
	if host.State() != first {
		t.Errorf("State changed on second Create")
	}
}

func TestPhysicalAndZeroTierCannotBeCreated(t *testing.T) {
	section, _ := newTestSection(t)

	for _, name := range []string{"eth0", "ztabcdef12"} {
		iface, _ := section.Open(name, nil)
		err := iface.Create()
		if !errors.Is(err, apperrors.ErrInterface) {
			t.Errorf("Expected interface error for %s, got %v", name, err)
		}
	}
}

func TestMACsecCreate(t *testing.T) {
	section, host := newTestSection(t)
	host.AddLink("eth1", "device", 1500)

	iface, _ := section.Open("macsec0", Options{
		OptSourceInterface: "eth1",
		OptCipher:          "gcm-aes-128",
		OptEncrypt:         "on",
	})
	if err := iface.Create(); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	expected := []string{
		"ip link add link eth1 name macsec0 type macsec cipher gcm-aes-128 encrypt on",
		"ip link set dev macsec0 down",
	}
	if got := host.CommandStrings(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Unexpected commands:\n got: %v\nwant: %v", got, expected)
	}
}

func TestUpdateOrdering(t *testing.T) {
	section, host := newTestSection(t)
	link := host.AddLink("eth1", "device", 1500)
	link.Addrs = []string{"10.0.0.1/24", "10.0.1.1/24"}
	host.AddLink("RED", "vrf", 65536)

	iface, _ := section.Open("eth1", nil)
	err := iface.Update(Settings{
		Description:   "uplink",
		Address:       []string{"10.0.0.1/24", "10.0.2.1/24"},
		AddressRemove: []string{"10.0.1.1/24", "10.0.9.1/24"},
		VRF:           "RED",
		MTU:           1400,
	})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	expected := []string{
		"ip link set dev eth1 alias uplink",
		"ip addr del 10.0.1.1/24 dev eth1",
		"ip addr add 10.0.2.1/24 dev eth1",
		"ip link set dev eth1 master RED",
		"ip link set dev eth1 mtu 1400",
		"ip link set dev eth1 up",
	}
	got := host.CommandStrings()
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Unexpected commands:\n got: %v\nwant: %v", got, expected)
	}

	lastDel, firstAdd := -1, len(got)
	for i, cmd := range host.Commands {
		if len(cmd.Args) < 2 || cmd.Args[0] != "addr" {
			continue
		}
		if cmd.Args[1] == "del" {
			lastDel = i
		}
		if cmd.Args[1] == "add" && i < firstAdd {
			firstAdd = i
		}
	}
	if lastDel > firstAdd {
		t.Errorf("Expected all address deletions before additions")
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	section, host := newTestSection(t)
	host.AddLink("eth1", "device", 1500)
	iface, _ := section.Open("eth1", nil)

	settings := Settings{Address: []string{"192.0.2.1/24", "2001:db8::1/64"}, MTU: 9000, Description: "lan"}
	if err := iface.Update(settings); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	first := host.State()

	if err := iface.Update(settings); err != nil {
		t.Fatalf("second Update() error: %v", err)
	}
	if host.State() != first {
		t.Errorf("State changed on second Update:\n%s\nvs\n%s", first, host.State())
	}
}

func TestUpdateBridgeMemberSkipsVRF(t *testing.T) {
	section, host := newTestSection(t)
	host.AddLink("eth2", "device", 1500)
	iface, _ := section.Open("eth2", nil)

	if err := iface.Update(Settings{BridgeMember: true, Disable: true}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	for _, c := range host.CommandStrings() {
		if c == "ip link set dev eth2 nomaster" {
			t.Errorf("Expected no VRF command for bridge member")
		}
	}
	if host.Links["eth2"].Up {
		t.Errorf("Expected disabled interface to be down")
	}
}

func TestCommandErrorsPropagate(t *testing.T) {
	section, host := newTestSection(t)
	host.AddLink("eth1", "device", 1500)
	host.FailFunc = func(cmd command.Command) error {
		if slices.Contains(cmd.Args, "mtu") {
			return &apperrors.CommandError{Command: cmd.String(), ExitStatus: 2, Output: "mtu too large"}
		}
		return nil
	}

	iface, _ := section.Open("eth1", nil)
	err := iface.Update(Settings{Address: []string{"10.0.0.1/24"}, MTU: 99999})
	if !errors.Is(err, apperrors.ErrCommand) {
		t.Fatalf("Expected command error, got %v", err)
	}
	if !slices.Contains(host.Links["eth1"].Addrs, "10.0.0.1/24") {
		t.Errorf("Expected address added before the failure to stay in place")
	}
	if host.Links["eth1"].Up {
		t.Errorf("Expected admin state to be untouched after the failure")
	}
}
