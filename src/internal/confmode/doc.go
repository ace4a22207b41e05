// Package confmode holds the conf-mode handlers: one per configuration
// subtree, each run through the four pipeline stages.
//
//	interfaces-l2tpv3    static L2TPv3 pseudowires (interfaces l2tpv3 <name>)
//	interfaces-macsec    MACsec interfaces and their wpa_supplicant (interfaces macsec <name>)
//	interfaces-zerotier  addressing of ZeroTier network devices (interfaces zerotier <name>)
//	vpn-zerotier         the ZeroTier daemon, its networks and local.conf (vpn zerotier)
//
// Interface handlers configure the entity named by Deps.Tag, normally taken
// from the IFCONF_TAGNODE environment variable. An entity absent from the
// proposed snapshot is deleted using what the effective snapshot recorded.
//
// GetConfig only reads the configuration tree. Verify reads the tree record
// and live state but changes nothing, and stops at the first violated
// constraint. Generate writes daemon configuration files. Apply changes the
// system and is safe to repeat.
package confmode
