// Package api provides the read-only op-mode HTTP API of ifconf.
//
// The API reports live state; it never changes configuration. It provides:
//   - interface enumeration, optionally filtered by section
//   - ZeroTier node status, networks, routes, peers and moons
//   - a health check covering the link table and the ZeroTier service
//
// # Response Format
//
// All successful responses wrap data in a "data" field:
//
//	{
//	  "data": { /* response payload */ }
//	}
//
// Error responses use the following format:
//
//	{
//	  "error": {
//	    "code": "not_found",
//	    "message": "Human-readable error message"
//	  }
//	}
//
// # Endpoints
//
//	GET /api/v1/health
//	GET /api/v1/sections
//	GET /api/v1/interfaces?section=l2tpv3&section=macsec
//	GET /api/v1/interfaces/{name}
//	GET /api/v1/zerotier/status
//	GET /api/v1/zerotier/networks
//	GET /api/v1/zerotier/networks/{id}
//	GET /api/v1/zerotier/networks/{id}/routes
//	GET /api/v1/zerotier/peers
//	GET /api/v1/zerotier/peers/{address}
//	GET /api/v1/zerotier/moons
//	GET /api/v1/zerotier/moons/{id}
//
// Requests from outside private and loopback ranges are refused.
package api
