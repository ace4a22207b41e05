package zerotier

import "encoding/json"

// MultipathModes maps configuration keywords to the service's numeric modes.
var MultipathModes = map[string]int{
	"none":         0,
	"random":       1,
	"proportional": 2,
}

// LocalConf is the service's local.conf file.
type LocalConf struct {
	Physical map[string]PhysicalPath `json:"physical"`
	Virtual  map[string]VirtualPeer  `json:"virtual"`
	Settings Settings                `json:"settings"`
}

// PhysicalPath holds per-network settings for a physical path, keyed by CIDR.
type PhysicalPath struct {
	Blacklist     bool   `json:"blacklist"`
	TrustedPathID uint64 `json:"trustedPathId"`
	MTU           int    `json:"mtu"`
}

// VirtualPeer holds hints for reaching a peer, keyed by ZeroTier address.
type VirtualPeer struct {
	Try       []string `json:"try"`
	Blacklist []string `json:"blacklist"`
}

type Settings struct {
	PrimaryPort              int      `json:"primaryPort,omitempty"`
	SecondaryPort            int      `json:"secondaryPort,omitempty"`
	TertiaryPort             int      `json:"tertiaryPort,omitempty"`
	PortMappingEnabled       bool     `json:"portMappingEnabled"`
	AllowSecondaryPort       bool     `json:"allowSecondaryPort"`
	SoftwareUpdate           string   `json:"softwareUpdate"`
	SoftwareUpdateChannel    string   `json:"softwareUpdateChannel"`
	InterfacePrefixBlacklist []string `json:"interfacePrefixBlacklist"`
	AllowTCPFallbackRelay    bool     `json:"allowTcpFallbackRelay"`
	MultipathMode            int      `json:"multipathMode"`
}

// DefaultLocalConf returns the settings written when nothing is overridden.
// Software updates are always disabled; the OS package manager owns them.
func DefaultLocalConf() LocalConf {
	return LocalConf{
		Physical: map[string]PhysicalPath{},
		Virtual:  map[string]VirtualPeer{},
		Settings: Settings{
			PortMappingEnabled:       true,
			AllowSecondaryPort:       true,
			SoftwareUpdate:           "disable",
			SoftwareUpdateChannel:    "release",
			InterfacePrefixBlacklist: []string{},
			AllowTCPFallbackRelay:    true,
			MultipathMode:            0,
		},
	}
}

// Marshal encodes the file the way the service writes it, indented by four spaces.
func (l LocalConf) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
