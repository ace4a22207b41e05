package command

import "strconv"

// Builders for the iproute2 commands issued by interface handlers.

func IPLink(args ...string) Command {
	return New("ip", append([]string{"link"}, args...)...)
}

func IPAddr(args ...string) Command {
	return New("ip", append([]string{"addr"}, args...)...)
}

func IPL2TP(args ...string) Command {
	return New("ip", append([]string{"l2tp"}, args...)...)
}

// LinkSetUp brings dev administratively up or down.
func LinkSetUp(dev string, up bool) Command {
	state := "down"
	if up {
		state = "up"
	}
	return IPLink("set", "dev", dev, state)
}

func LinkSetMTU(dev string, mtu int) Command {
	return IPLink("set", "dev", dev, "mtu", strconv.Itoa(mtu))
}

// LinkSetMaster enslaves dev to master. An empty master detaches it.
func LinkSetMaster(dev, master string) Command {
	if master == "" {
		return IPLink("set", "dev", dev, "nomaster")
	}
	return IPLink("set", "dev", dev, "master", master)
}

func LinkSetAlias(dev, alias string) Command {
	return IPLink("set", "dev", dev, "alias", alias)
}

func LinkDelete(dev string) Command {
	return IPLink("delete", "dev", dev)
}

func AddrAdd(dev, cidr string) Command {
	return IPAddr("add", cidr, "dev", dev)
}

func AddrDel(dev, cidr string) Command {
	return IPAddr("del", cidr, "dev", dev)
}

// Systemctl builds a systemctl invocation for unit.
func Systemctl(action, unit string) Command {
	return New("systemctl", action, unit)
}
