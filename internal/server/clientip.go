package server

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// proxyTrust lists the peers allowed to report the visitor address through
// X-Forwarded-For. An empty list trusts nobody.
type proxyTrust []netip.Prefix

// parseTrustedProxies accepts CIDR blocks and bare addresses. Every invalid
// entry is reported; the valid ones are returned regardless.
func parseTrustedProxies(entries []string) (proxyTrust, error) {
	var (
		trust proxyTrust
		errs  *multierror.Error
	)
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("trusted_proxies: %w", err))
				continue
			}
			trust = append(trust, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(e)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("trusted_proxies: %w", err))
			continue
		}
		a = a.Unmap()
		trust = append(trust, netip.PrefixFrom(a, a.BitLen()))
	}
	return trust, errs.ErrorOrNil()
}

func (t proxyTrust) trusts(a netip.Addr) bool {
	a = a.Unmap()
	for _, p := range t {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// clientIP returns the address a request is attributed to for rate limiting
// and logs. The TCP peer is used unless it is a trusted proxy; then the
// rightmost X-Forwarded-For hop that is not itself trusted wins.
func (t proxyTrust) clientIP(r *http.Request) string {
	peer := peerHost(r.RemoteAddr)
	if len(t) == 0 {
		return peer
	}
	addr, err := netip.ParseAddr(peer)
	if err != nil || !t.trusts(addr) {
		return peer
	}

	hops := forwardedHops(r.Header.Values("X-Forwarded-For"))
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(hops[i])
		if err != nil {
			return peer
		}
		if !t.trusts(hop) {
			return hop.Unmap().String()
		}
	}
	if len(hops) > 0 {
		return hops[0]
	}
	return peer
}

func peerHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func forwardedHops(values []string) []string {
	var hops []string
	for _, v := range values {
		for _, h := range strings.Split(v, ",") {
			if h = strings.TrimSpace(h); h != "" {
				hops = append(hops, h)
			}
		}
	}
	return hops
}
