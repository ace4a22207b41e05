package confmode

import (
	"fmt"
	"maps"
	"slices"

	"github.com/echoreply/ifconf/src/internal/command"
	"github.com/echoreply/ifconf/src/internal/configtree"
	"github.com/echoreply/ifconf/src/internal/domain"
	"github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/ifconfig"
	"github.com/echoreply/ifconf/src/internal/networking"
	"github.com/echoreply/ifconf/src/internal/pipeline"
)

// Deps are the collaborators a handler runs against.
type Deps struct {
	// Tag is the configured entity, normally TagFromEnv().
	Tag string

	Oracle   configtree.Oracle
	Section  *ifconfig.Section
	Renderer domain.Renderer
	ZeroTier domain.ZeroTierClient
	IPTables networking.IPTablesFactory

	// RuntimeDir receives rendered daemon configuration, e.g. /run.
	RuntimeDir string
	// ZeroTierLocalConf is the service's local.conf path.
	ZeroTierLocalConf string
	// ManageFirewall opens the ZeroTier primary port in the firewall.
	ManageFirewall bool
}

func (d *Deps) links() networking.LinkLister {
	return d.Section.Host().Links
}

func (d *Deps) runner() command.Runner {
	return d.Section.Host().Runner
}

func (d *Deps) zeroTier() (domain.ZeroTierClient, error) {
	if d.ZeroTier == nil {
		return nil, errors.NewZeroTierError("ZeroTier integration is disabled", nil)
	}
	return d.ZeroTier, nil
}

// Factory builds the pipeline of one handler.
type Factory func(d *Deps) pipeline.Runner

// Handler names accepted by NewRunner.
const (
	HandlerL2TPv3            = "interfaces-l2tpv3"
	HandlerMACsec            = "interfaces-macsec"
	HandlerZeroTierInterface = "interfaces-zerotier"
	HandlerZeroTierService   = "vpn-zerotier"
)

var factories = map[string]Factory{
	HandlerL2TPv3: func(d *Deps) pipeline.Runner {
		return pipeline.New(HandlerL2TPv3, NewL2TPv3Handler(d))
	},
	HandlerMACsec: func(d *Deps) pipeline.Runner {
		return pipeline.New(HandlerMACsec, NewMACsecHandler(d))
	},
	HandlerZeroTierInterface: func(d *Deps) pipeline.Runner {
		return pipeline.New(HandlerZeroTierInterface, NewZeroTierInterfaceHandler(d))
	},
	HandlerZeroTierService: func(d *Deps) pipeline.Runner {
		return pipeline.New(HandlerZeroTierService, NewZeroTierServiceHandler(d))
	},
}

// Names returns the registered handler names, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(factories))
}

// NewRunner returns the pipeline of the named handler.
func NewRunner(name string, d *Deps) (pipeline.Runner, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, errors.NewConfigError(fmt.Sprintf("unknown handler %q", name), nil)
	}
	return factory(d), nil
}
