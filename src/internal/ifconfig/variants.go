package ifconfig

import (
	"fmt"
	"sync"
)

// Section names of the built-in variants.
const (
	SectionLoopback = "loopback"
	SectionEthernet = "ethernet"
	SectionBond     = "bonding"
	SectionBridge   = "bridge"
	SectionDummy    = "dummy"
	SectionL2TPv3   = "l2tpv3"
	SectionMACsec   = "macsec"
	SectionZeroTier = "zerotier"
	SectionGeneric  = "generic"
)

func builtinVariants() []*Variant {
	return []*Variant{
		{Section: SectionLoopback, Prefixes: []string{"lo"}, Driver: physicalDriver{}},
		{Section: SectionEthernet, Prefixes: []string{"eth", "lan"}, Bridgeable: true, Driver: physicalDriver{}},
		{Section: SectionBond, Prefixes: []string{"bond"}, Bridgeable: true, Driver: linkDriver{kind: "bond"}},
		{Section: SectionBridge, Prefixes: []string{"br"}, Driver: linkDriver{kind: "bridge"}},
		{Section: SectionDummy, Prefixes: []string{"dum"}, Driver: linkDriver{kind: "dummy"}},
		{
			Section:    SectionL2TPv3,
			Prefixes:   []string{"l2tpeth"},
			Bridgeable: true,
			Driver:     l2tpDriver{},
			Defaults: Options{
				OptEncapsulation: "udp",
				OptLocalPort:     "0",
				OptRemotePort:    "0",
			},
		},
		{
			Section:  SectionMACsec,
			Prefixes: []string{"macsec"},
			Driver:   macsecDriver{},
		},
		{
			Section:    SectionZeroTier,
			Prefixes:   []string{"zt"},
			Bridgeable: true,
			Driver:     zeroTierDriver{},
			Basename:   ZeroTierBasename,
		},
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry of built-in variants.
// It is built on first use and sealed.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewBuiltinRegistry()
		if err != nil {
			panic(fmt.Sprintf("building interface registry: %v", err))
		}
		r.Seal()
		defaultRegistry = r
	})
	return defaultRegistry
}

// NewBuiltinRegistry returns an unsealed registry holding the built-in
// variants and the generic fallback.
func NewBuiltinRegistry() (*Registry, error) {
	r := NewRegistry()
	for _, v := range builtinVariants() {
		if err := r.Register(v); err != nil {
			return nil, err
		}
	}
	if err := r.SetFallback(&Variant{Section: SectionGeneric, Driver: physicalDriver{}}); err != nil {
		return nil, err
	}
	return r, nil
}
