package ifconfig

import (
	"iter"
	"slices"
)

// Section resolves names against a registry and enumerates live
// interfaces on a host.
type Section struct {
	registry *Registry
	host     Host
}

// NewSection binds a registry to a host.
func NewSection(registry *Registry, host Host) *Section {
	return &Section{registry: registry, host: host}
}

// Registry returns the registry names are resolved against.
func (s *Section) Registry() *Registry {
	return s.registry
}

// Host returns the host the section enumerates.
func (s *Section) Host() Host {
	return s.host
}

// Sections returns the section names of all variants.
func (s *Section) Sections() []string {
	var out []string
	for _, v := range s.registry.Variants() {
		out = append(out, v.Section)
	}
	return out
}

// Klass returns the variant responsible for name.
func (s *Section) Klass(name string) (*Variant, error) {
	return s.registry.Resolve(name)
}

// Open returns a handle for name with the variant defaults overridden by opts.
func (s *Section) Open(name string, opts Options) (*Interface, error) {
	v, err := s.registry.Resolve(name)
	if err != nil {
		return nil, err
	}
	return &Interface{name: name, variant: v, opts: v.options(opts), host: s.host}, nil
}

// List returns live interface names belonging to the given sections, or
// all names when no section is given.
func (s *Section) List(sections ...string) ([]string, error) {
	names, err := s.host.Links.LinkNames()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range names {
		if s.matches(name, sections) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Interfaces is the lazy form of List. Every range re-reads live state.
// An enumeration error is yielded once as ("", err) and ends the sequence.
func (s *Section) Interfaces(sections ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		names, err := s.List(sections...)
		if err != nil {
			yield("", err)
			return
		}
		for _, name := range names {
			if !yield(name, nil) {
				return
			}
		}
	}
}

func (s *Section) matches(name string, sections []string) bool {
	if len(sections) == 0 {
		return true
	}
	v, err := s.registry.Resolve(name)
	if err != nil {
		return false
	}
	return slices.Contains(sections, v.Section)
}
