package ifconfig

import (
	"maps"
	"strconv"
)

// Options holds the per-interface parameters a driver needs, keyed by
// option name. Variant defaults are overridden by caller-supplied values.
type Options map[string]string

// Int returns the option parsed as an integer, or 0.
func (o Options) Int(key string) int {
	n, _ := strconv.Atoi(o[key])
	return n
}

// Driver issues the commands that are specific to one interface kind.
// Create is only called for a link that does not exist yet; Teardown only
// for a link that exists and is already administratively down.
type Driver interface {
	Create(i *Interface) error
	Teardown(i *Interface) error
}

// BasenameFunc overrides generic suffix stripping for names it recognises.
type BasenameFunc func(name string, stripVLAN bool) (string, bool)

// Variant is one registered interface kind.
type Variant struct {
	// Section is the configuration subtree the variant is managed under.
	Section  string
	Prefixes []string
	Defaults Options
	// Bridgeable variants may be enslaved to a bridge.
	Bridgeable bool
	Driver     Driver
	Basename   BasenameFunc
}

func (v *Variant) options(overrides Options) Options {
	out := Options{}
	maps.Copy(out, v.Defaults)
	maps.Copy(out, overrides)
	return out
}
