package zerotier

import "regexp"

const (
	defaultBaseURL = "http://127.0.0.1:9993"

	// ServiceUnit is the systemd unit of the ZeroTier daemon.
	ServiceUnit = "zerotier-one.service"
)

var networkIDPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

// ValidNetworkID reports whether id is a 16 digit hexadecimal network id.
func ValidNetworkID(id string) bool {
	return networkIDPattern.MatchString(id)
}

// Status is the node status returned by /status.
type Status struct {
	Address           string `json:"address"`
	PublicIdentity    string `json:"publicIdentity"`
	Online            bool   `json:"online"`
	TCPFallbackActive bool   `json:"tcpFallbackActive"`
	Version           string `json:"version"`
	Clock             int64  `json:"clock"`
	PlanetWorldID     uint64 `json:"planetWorldId"`
	Config            struct {
		Settings struct {
			PrimaryPort   int  `json:"primaryPort"`
			SecondaryPort int  `json:"secondaryPort"`
			TertiaryPort  int  `json:"tertiaryPort"`
			PortMapping   bool `json:"portMappingEnabled"`
		} `json:"settings"`
	} `json:"config"`
}

// Route is one managed route pushed by a network controller.
type Route struct {
	Target string  `json:"target"`
	Via    *string `json:"via"`
	Flags  int     `json:"flags"`
	Metric int     `json:"metric"`
}

// Network is a joined network as returned by /network.
type Network struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Status            string   `json:"status"`
	Type              string   `json:"type"`
	MAC               string   `json:"mac"`
	MTU               int      `json:"mtu"`
	Bridge            bool     `json:"bridge"`
	BroadcastEnabled  bool     `json:"broadcastEnabled"`
	PortError         int      `json:"portError"`
	AssignedAddresses []string `json:"assignedAddresses"`
	Routes            []Route  `json:"routes"`
	PortDeviceName    string   `json:"portDeviceName"`
	AllowManaged      bool     `json:"allowManaged"`
	AllowGlobal       bool     `json:"allowGlobal"`
	AllowDefault      bool     `json:"allowDefault"`
	AllowDNS          bool     `json:"allowDNS"`
}

// NetworkFlags are the per-network local settings.
type NetworkFlags struct {
	AllowManaged bool `json:"allowManaged"`
	AllowGlobal  bool `json:"allowGlobal"`
	AllowDefault bool `json:"allowDefault"`
}

// Path is one physical path to a peer.
type Path struct {
	Active        bool   `json:"active"`
	Address       string `json:"address"`
	LastSend      int64  `json:"lastSend"`
	LastReceive   int64  `json:"lastReceive"`
	Preferred     bool   `json:"preferred"`
	Expired       bool   `json:"expired"`
	TrustedPathID uint64 `json:"trustedPathId"`
}

// Peer is a known node as returned by /peer.
type Peer struct {
	Address string `json:"address"`
	Version string `json:"version"`
	Latency int    `json:"latency"`
	Role    string `json:"role"`
	Paths   []Path `json:"paths"`
}

// Root is one root server of a moon.
type Root struct {
	Identity        string   `json:"identity"`
	StableEndpoints []string `json:"stableEndpoints"`
}

// Moon is an orbited moon as returned by /moon.
type Moon struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Waiting   bool   `json:"waiting"`
	Roots     []Root `json:"roots"`
}
