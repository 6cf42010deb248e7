// Package bootstrap resolves the set of peers a joining node should try.
// "init" means this node starts a new ring; "static" is a fixed peer
// list; "dns" resolves a name via the system resolver, optionally after
// a registration step performed by the first node (see Register below).
package bootstrap

import (
	"context"
	"fmt"
	"net"

	"chordring/internal/config"
)

// ErrNoBootstrapPeers is returned when dns/static resolution finds no
// usable peers to join through.
var ErrNoBootstrapPeers = fmt.Errorf("bootstrap: no peers resolved")

// Resolve returns the list of "host:port" addresses to attempt joining
// through, or an empty list for mode "init".
func Resolve(ctx context.Context, cfg config.BootstrapConfig, resolver *net.Resolver) ([]string, error) {
	switch cfg.Mode {
	case "init":
		return nil, nil

	case "static":
		if len(cfg.Peers) == 0 {
			return nil, ErrNoBootstrapPeers
		}
		return cfg.Peers, nil

	case "dns":
		if resolver == nil {
			resolver = net.DefaultResolver
		}
		_, addrs, err := resolver.LookupSRV(ctx, "", "", cfg.DNSName)
		if err == nil && len(addrs) > 0 {
			peers := make([]string, 0, len(addrs))
			for _, a := range addrs {
				peers = append(peers, fmt.Sprintf("%s:%d", trimTrailingDot(a.Target), a.Port))
			}
			return peers, nil
		}
		// fall back to plain A/AAAA lookup, useful when the registered
		// record is a bare hostname rather than an SRV record
		ips, err := resolver.LookupHost(ctx, cfg.DNSName)
		if err != nil || len(ips) == 0 {
			return nil, fmt.Errorf("%w: dns lookup of %s failed: %v", ErrNoBootstrapPeers, cfg.DNSName, err)
		}
		peers := make([]string, 0, len(ips))
		for _, ip := range ips {
			peers = append(peers, ip)
		}
		return peers, nil

	default:
		return nil, fmt.Errorf("bootstrap: unknown mode %q", cfg.Mode)
	}
}

func trimTrailingDot(s string) string {
	if len(s) > 0 && s[len(s)-1] == '.' {
		return s[:len(s)-1]
	}
	return s
}
