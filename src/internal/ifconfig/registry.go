package ifconfig

import (
	"regexp"
	"strings"
	"sync"

	"github.com/echoreply/ifconf/src/internal/errors"
)

// Registry maps interface name prefixes to variants.
//
// Prefixes and sections are unique, so a name resolves to at most one
// registered variant. An optional fallback variant catches every name that
// matches no prefix. Once sealed the registry rejects further registration.
type Registry struct {
	mu        sync.RWMutex
	variants  []*Variant
	byPrefix  map[string]*Variant
	bySection map[string]*Variant
	fallback  *Variant
	sealed    bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byPrefix:  map[string]*Variant{},
		bySection: map[string]*Variant{},
	}
}

// Register adds v. It fails when a prefix or the section is already taken.
func (r *Registry) Register(v *Variant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return errors.NewInternalError("interface registry is sealed", nil)
	}
	if v.Section == "" || v.Driver == nil {
		return errors.NewInternalError("variant needs a section and a driver", nil)
	}
	if _, ok := r.bySection[v.Section]; ok {
		return errors.NewDuplicateRegistrationError("section", v.Section)
	}
	if r.fallback != nil && r.fallback.Section == v.Section {
		return errors.NewDuplicateRegistrationError("section", v.Section)
	}
	seen := map[string]bool{}
	for _, p := range v.Prefixes {
		if _, ok := r.byPrefix[p]; ok || seen[p] {
			return errors.NewDuplicateRegistrationError("prefix", p)
		}
		seen[p] = true
	}

	for _, p := range v.Prefixes {
		r.byPrefix[p] = v
	}
	r.bySection[v.Section] = v
	r.variants = append(r.variants, v)
	return nil
}

// SetFallback installs the variant used for names matching no prefix.
func (r *Registry) SetFallback(v *Variant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return errors.NewInternalError("interface registry is sealed", nil)
	}
	if r.fallback != nil {
		return errors.NewDuplicateRegistrationError("fallback variant", r.fallback.Section)
	}
	if _, ok := r.bySection[v.Section]; ok {
		return errors.NewDuplicateRegistrationError("section", v.Section)
	}
	r.fallback = v
	return nil
}

// Seal makes the registry immutable.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Resolve returns the variant responsible for an interface name.
// VLAN suffixes are stripped before the prefix lookup.
func (r *Registry) Resolve(name string) (*Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if v, ok := r.byPrefix[r.basename(name, true)]; ok {
		return v, nil
	}
	if r.fallback != nil && name != "" {
		return r.fallback, nil
	}
	return nil, errors.NewNoVariantError(name)
}

// Basename strips the instance number from name. When stripVLAN is set a
// trailing VLAN suffix (".100") is stripped as well. Variants with their
// own naming scheme take precedence over the generic rule.
func (r *Registry) Basename(name string, stripVLAN bool) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.basename(name, stripVLAN)
}

func (r *Registry) basename(name string, stripVLAN bool) string {
	for _, v := range r.variants {
		if v.Basename == nil {
			continue
		}
		if base, ok := v.Basename(name, stripVLAN); ok {
			return base
		}
	}
	return GenericBasename(name, stripVLAN)
}

// Lookup returns the variant registered for a section.
func (r *Registry) Lookup(section string) (*Variant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if v, ok := r.bySection[section]; ok {
		return v, true
	}
	if r.fallback != nil && r.fallback.Section == section {
		return r.fallback, true
	}
	return nil, false
}

// Variants returns registered variants in registration order, fallback last.
func (r *Registry) Variants() []*Variant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Variant, 0, len(r.variants)+1)
	out = append(out, r.variants...)
	if r.fallback != nil {
		out = append(out, r.fallback)
	}
	return out
}

// GenericBasename implements the default suffix stripping:
// eth0 -> eth, eth0.100 -> eth0 (or eth with stripVLAN), l2tpeth12 -> l2tpeth.
func GenericBasename(name string, stripVLAN bool) string {
	name = strings.TrimRight(name, "0123456789")
	name = strings.TrimRight(name, ".")
	if stripVLAN {
		name = strings.TrimRight(name, "0123456789.")
	}
	return name
}

var zeroTierName = regexp.MustCompile(`^zt[a-z0-9]{8}`)

// ZeroTierBasename recognises the daemon-generated "zt" + 8 character names.
// VLANs are not supported on these interfaces; when asked to strip one the
// suffix is removed on a best-effort basis.
func ZeroTierBasename(name string, stripVLAN bool) (string, bool) {
	if !zeroTierName.MatchString(name) {
		return "", false
	}
	if stripVLAN {
		name = strings.TrimRight(name, "0123456789.")
	}
	return name[:2], true
}
