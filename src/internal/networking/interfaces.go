package networking

import (
	"errors"
	"net"
	"net/netip"
	"sort"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	apperrors "github.com/echoreply/ifconf/src/internal/errors"
)

// LinkInfo is a snapshot of one kernel network interface.
type LinkInfo struct {
	Name   string
	Index  int
	Kind   string
	MTU    int
	Up     bool
	Master string
	Alias  string
	// Addrs holds assigned addresses in CIDR notation.
	Addrs []string
}

// HasAddr reports whether cidr is assigned to the link. Addresses are
// compared in canonical form, host bits included.
func (l *LinkInfo) HasAddr(cidr string) bool {
	want := CanonicalCIDR(cidr)
	for _, a := range l.Addrs {
		if CanonicalCIDR(a) == want {
			return true
		}
	}
	return false
}

// CanonicalCIDR returns cidr the way the kernel reports it: lower case,
// zeros compressed, host bits kept. Unparsable input is returned as is.
func CanonicalCIDR(cidr string) string {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return cidr
	}
	return p.String()
}

// LinkLister queries live interface state. Implementations must return a
// fresh view on every call.
type LinkLister interface {
	// LinkNames returns the names of all links, sorted.
	LinkNames() ([]string, error)
	// Link returns the named link, or nil when it does not exist.
	Link(name string) (*LinkInfo, error)
}

// LinkExists reports whether the named link is present. Lookup errors are
// returned, never read as absence.
func LinkExists(l LinkLister, name string) (bool, error) {
	info, err := l.Link(name)
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

// NetlinkLinks implements LinkLister over rtnetlink.
type NetlinkLinks struct{}

var _ LinkLister = NetlinkLinks{}

func (NetlinkLinks) LinkNames() ([]string, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, apperrors.NewInterfaceError("failed to list links", err)
	}
	names := make([]string, 0, len(links))
	for _, link := range links {
		names = append(names, link.Attrs().Name)
	}
	sort.Strings(names)
	return names, nil
}

func (NetlinkLinks) Link(name string) (*LinkInfo, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, apperrors.NewInterfaceError("failed to get link "+name, err)
	}

	var master string
	if idx := link.Attrs().MasterIndex; idx > 0 {
		if m, err := netlink.LinkByIndex(idx); err == nil {
			master = m.Attrs().Name
		}
	}

	addrs, err := netlink.AddrList(link, unix.AF_UNSPEC)
	if err != nil {
		return nil, apperrors.NewInterfaceError("failed to list addresses of "+name, err)
	}
	return newLinkInfo(link, master, addrs), nil
}

func newLinkInfo(link netlink.Link, master string, addrs []netlink.Addr) *LinkInfo {
	attrs := link.Attrs()
	info := &LinkInfo{
		Name:   attrs.Name,
		Index:  attrs.Index,
		Kind:   link.Type(),
		MTU:    attrs.MTU,
		Up:     attrs.Flags&net.FlagUp != 0,
		Master: master,
		Alias:  attrs.Alias,
	}
	for _, addr := range addrs {
		if addr.IPNet != nil {
			info.Addrs = append(info.Addrs, addr.IPNet.String())
		}
	}
	return info
}
