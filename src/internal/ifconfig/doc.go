// Package ifconfig models network interfaces as handles over live OS state.
//
// A Registry maps name prefixes ("eth", "l2tpeth", "zt", ...) to variants.
// Each variant carries a Driver with the kind-specific create and teardown
// commands; everything else (admin state, MTU, VRF, addresses, alias) is
// common and lives on Interface.
//
//	section := ifconfig.NewSection(ifconfig.Default(), host)
//	iface, err := section.Open("l2tpeth0", ifconfig.Options{"tunnel_id": "10", ...})
//	if err != nil {
//	    return err
//	}
//	if err := iface.Create(); err != nil {
//	    return err
//	}
//
// Create and Remove check existence first and can be called repeatedly.
// No operation retries or rolls back; a failed command is returned as is.
package ifconfig
