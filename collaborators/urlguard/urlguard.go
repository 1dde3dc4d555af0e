// Package urlguard is an optional, host-side collaborator for
// github.com/njchilds90/gohtmlsanitizer's [htmlsanitizer.Policy]. It
// never runs inside the sanitizer's core: nothing in that module's
// tokenizer, attribute parser, or balancing sanitizer performs I/O,
// and nothing there imports this package. A host wires urlguard in
// only if it wants sanitized URI attributes checked against an
// SSRF blocklist, or wants a hardened client to fetch one afterward.
package urlguard

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
	htmlsanitizer "github.com/njchilds90/gohtmlsanitizer"
)

// GuardSchema is the blocklist data [GuardSchema.ValidateURL] and
// [Apply] consult — the same data/behavior split
// htmlsanitizer.Schema and htmlsanitizer.CSSSchema use for the
// sanitizer's own policy tables: the blocklist is plain struct data a
// host can narrow or widen per Policy, not logic hardcoded against
// package state.
type GuardSchema struct {
	// AllowedSchemes are the only URI schemes ValidateURL accepts.
	AllowedSchemes []string
	// BlockedNetworks are CIDR ranges a literal IP host must not fall
	// within.
	BlockedNetworks []net.IPNet
	// BlockedHostnames are exact (case-insensitive) hostnames to
	// reject outright, without a DNS lookup.
	BlockedHostnames []string
}

// DefaultGuardSchema returns the SSRF-safe defaults: http/https only,
// the standard loopback/private/link-local/metadata CIDR ranges
// blocked, and "localhost" blocked by name.
func DefaultGuardSchema() *GuardSchema {
	cidrs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"169.254.0.0/16",
		"0.0.0.0/8",
		"::1/128",
		"fe80::/10",
		"fc00::/7",
	}
	schema := &GuardSchema{
		AllowedSchemes:   []string{"http", "https"},
		BlockedHostnames: []string{"localhost"},
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("urlguard: invalid CIDR %s: %v", cidr, err))
		}
		schema.BlockedNetworks = append(schema.BlockedNetworks, *network)
	}
	return schema
}

// ValidateURL performs a static, DNS-free check of rawURL against s:
// scheme must be in AllowedSchemes, the host must be non-empty, and a
// literal IP host must not fall in a BlockedNetworks range. It does
// not resolve hostnames, so it cannot catch DNS rebinding on its own —
// pair it with [NewSafeHTTPClient] for that. A nil s rejects every URL.
func (s *GuardSchema) ValidateURL(rawURL string) error {
	if s == nil {
		return fmt.Errorf("urlguard: no GuardSchema configured")
	}
	if rawURL == "" {
		return fmt.Errorf("urlguard: empty URL")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("urlguard: invalid URL: %w", err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if !s.isAllowedScheme(scheme) {
		return fmt.Errorf("urlguard: disallowed scheme %q", scheme)
	}
	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("urlguard: empty host in %q", rawURL)
	}
	if ip := net.ParseIP(host); ip != nil {
		if s.isBlockedIP(ip) {
			return fmt.Errorf("urlguard: blocked IP %s", ip)
		}
		return nil
	}
	if s.isBlockedHostname(host) {
		return fmt.Errorf("urlguard: blocked host %q", host)
	}
	return nil
}

func (s *GuardSchema) isAllowedScheme(scheme string) bool {
	for _, allowed := range s.AllowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

func (s *GuardSchema) isBlockedIP(ip net.IP) bool {
	for _, n := range s.BlockedNetworks {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func (s *GuardSchema) isBlockedHostname(host string) bool {
	for _, b := range s.BlockedHostnames {
		if strings.EqualFold(host, b) {
			return true
		}
	}
	return false
}

// URIRewriter returns an htmlsanitizer.URIRewriter backed by s: it
// rejects any URL s.ValidateURL rejects and otherwise returns the URL
// unchanged. It never makes a network call, so it is safe to run
// against untrusted input at request time, unlike [NewSafeHTTPClient].
func (s *GuardSchema) URIRewriter() htmlsanitizer.URIRewriter {
	return func(uri string) (string, bool) {
		if err := s.ValidateURL(uri); err != nil {
			return "", false
		}
		return uri, true
	}
}

// NewStaticURIRewriter returns the same rewriter as
// schema.URIRewriter(), for callers that want a bare
// htmlsanitizer.URIRewriter value rather than assembling a Policy
// through [Apply]. A nil schema uses [DefaultGuardSchema]. It is
// "static" in that it never makes a network call — safe to run
// against untrusted input at request time.
func NewStaticURIRewriter(schema *GuardSchema) htmlsanitizer.URIRewriter {
	if schema == nil {
		schema = DefaultGuardSchema()
	}
	return schema.URIRewriter()
}

// Apply wires schema's URL guard into p as its URIRewriter, the
// constructor-option entry point for a Policy that should reject
// SSRF-prone href/src values outright rather than merely restricting
// their scheme. A nil schema uses [DefaultGuardSchema]. Returns p so
// it can be chained off a Policy constructor.
func Apply(p *htmlsanitizer.Policy, schema *GuardSchema) *htmlsanitizer.Policy {
	if schema == nil {
		schema = DefaultGuardSchema()
	}
	p.URIRewriter = schema.URIRewriter()
	return p
}

// NewSafeHTTPClient returns an *http.Client, backed by
// github.com/doyensec/safeurl, that blocks requests to private,
// loopback, link-local, and cloud-metadata addresses even after DNS
// resolution — for a host that wants to fetch a URL a sanitized
// attribute already pointed at (e.g. to proxy an <img src>). schema's
// AllowedSchemes become the client's allowed schemes; a nil schema
// uses [DefaultGuardSchema].
func NewSafeHTTPClient(schema *GuardSchema, timeout time.Duration) *http.Client {
	if schema == nil {
		schema = DefaultGuardSchema()
	}
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(schema.AllowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()
	return safeurl.Client(config).Client
}
