// Package clientip extracts real client IP addresses from HTTP requests.
//
// It handles the common proxy headers in priority order to determine the address
// of the actual client behind load balancers and CDNs.
//
// # Header Priority
//
// The package checks headers in this specific order:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost entry)
//  4. X-Real-IP (nginx and other proxies)
//  5. RemoteAddr (direct connection)
//
// # Usage
//
// With a relay request snapshot:
//
//	ip := clientip.GetIP(req.Header, req.RemoteAddr)
//
// With a net/http request:
//
//	ip := clientip.GetIPFromRequest(r)
//
// # Validation
//
// Header values are parsed with net.ParseIP and normalized. Invalid values and
// the unspecified addresses (0.0.0.0, ::) are skipped. If nothing valid is found,
// the raw remote address is returned unchanged.
package clientip
