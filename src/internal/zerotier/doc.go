// Package zerotier provides a client for the zerotier-one local service API.
//
// The service listens on 127.0.0.1:9993 and authenticates requests with the
// token stored in authtoken.secret. The client covers what interface and
// VPN handlers need: node status, joining and leaving networks, network
// flags, peers and moons.
//
//	token, err := zerotier.ReadAuthToken("/var/lib/zerotier-one/authtoken.secret")
//	if err != nil {
//	    return err
//	}
//	client := zerotier.NewClient("", token, nil)
//	dev, err := client.RealInterface("8056c2e21c000001")
//
// Lookups of a single network, peer or moon return nil without error when
// the object does not exist.
package zerotier
