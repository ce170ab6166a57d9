package bootstrap

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/miekg/dns"
)

// DefaultDoHEndpoint is the DNS-over-HTTPS resolver used when --system-dns
// isn't passed, per spec.md §6's "built-in DNS-over-HTTPS resolution".
const DefaultDoHEndpoint = "https://cloudflare-dns.com/dns-query"

// Resolver resolves a CDN hostname to an IP address.
type Resolver interface {
	Resolve(ctx context.Context, host string) (net.IP, error)
}

// SystemResolver defers to the OS stub resolver, selected by --system-dns.
type SystemResolver struct{}

func (SystemResolver) Resolve(ctx context.Context, host string) (net.IP, error) {
	ips, err := net.DefaultResolver.LookupIP(ctx, "ip4", host)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: system DNS lookup %s: %w", host, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("bootstrap: system DNS lookup %s: no results", host)
	}
	return ips[0], nil
}

// DoHResolver resolves hostnames via DNS-over-HTTPS (RFC 8484, GET form),
// using miekg/dns to build and parse the wire-format query/response that
// travels as the "dns" query parameter's base64url body.
type DoHResolver struct {
	Endpoint string
	Client   *http.Client
}

// NewDoHResolver builds a DoHResolver against endpoint, defaulting to
// DefaultDoHEndpoint when empty.
func NewDoHResolver(endpoint string) *DoHResolver {
	if endpoint == "" {
		endpoint = DefaultDoHEndpoint
	}
	return &DoHResolver{Endpoint: endpoint, Client: http.DefaultClient}
}

func (r *DoHResolver) Resolve(ctx context.Context, host string) (net.IP, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), dns.TypeA)
	msg.RecursionDesired = true

	packed, err := msg.Pack()
	if err != nil {
		return nil, fmt.Errorf("bootstrap: pack DNS query for %s: %w", host, err)
	}

	q := base64.RawURLEncoding.EncodeToString(packed)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.Endpoint+"?dns="+q, nil)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: build DoH request: %w", err)
	}
	req.Header.Set("Accept", "application/dns-message")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: DoH request to %s: %w", r.Endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bootstrap: DoH request to %s: status %d", r.Endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: read DoH response: %w", err)
	}

	answer := new(dns.Msg)
	if err := answer.Unpack(body); err != nil {
		return nil, fmt.Errorf("bootstrap: unpack DoH response for %s: %w", host, err)
	}

	for _, rr := range answer.Answer {
		if a, ok := rr.(*dns.A); ok {
			return a.A, nil
		}
	}
	return nil, fmt.Errorf("bootstrap: DoH lookup %s: no A record in response", host)
}

// ResolveHost picks SystemResolver or DoHResolver according to useSystemDNS
// (the --system-dns flag's value: true means use the OS resolver) and
// resolves host, per spec.md's ConfigError taxonomy entry for "DNS
// resolution failure".
func ResolveHost(ctx context.Context, host string, useSystemDNS bool) (net.IP, error) {
	var r Resolver
	if useSystemDNS {
		r = SystemResolver{}
	} else {
		r = NewDoHResolver("")
	}
	return r.Resolve(ctx, host)
}
