package httputil

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

// ClientOptions configures the transport ei uses to fetch release assets,
// dist-manifest documents, and builtin-registry lookups. Every one of
// those destinations can point somewhere the caller doesn't control —
// a GitHub release redirect, a configured mirror, a nightly.link
// artifact link, a community registry entry — so the transport these
// options build always carries SSRF hardening; there is no "trusted"
// variant.
type ClientOptions struct {
	// Timeout is the overall request timeout. Default: 30s.
	Timeout time.Duration

	// DialTimeout is the TCP dial timeout. Default: 30s.
	DialTimeout time.Duration

	// TLSHandshakeTimeout is the TLS handshake timeout. Default: 10s.
	TLSHandshakeTimeout time.Duration

	// ResponseHeaderTimeout is the time to wait for response headers. Default: 10s.
	ResponseHeaderTimeout time.Duration

	// MaxRedirects bounds the redirect chain. Default: 10, generous enough
	// to cover a proxy mirror fronting a GitHub release (mirror -> github.com
	// -> objects.githubusercontent.com is 2 hops) without leaving an
	// effectively-unbounded chain.
	MaxRedirects int

	// EnableCompression enables Accept-Encoding header. Default: false (disabled for security).
	// Keeping compression disabled prevents decompression bomb attacks.
	EnableCompression bool

	// MaxIdleConns is the maximum number of idle connections. Default: 10.
	MaxIdleConns int

	// IdleConnTimeout is how long idle connections stay open. Default: 90s.
	IdleConnTimeout time.Duration
}

// defaultClientOptions holds the zero-value fallbacks, applied field by
// field so a caller can override only the setting it cares about (Shared
// is typically called with just Timeout set).
var defaultClientOptions = ClientOptions{
	Timeout:               30 * time.Second,
	DialTimeout:           30 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ResponseHeaderTimeout: 10 * time.Second,
	MaxRedirects:          10,
	EnableCompression:     false, // Disabled for security (decompression bomb protection)
	MaxIdleConns:          10,
	IdleConnTimeout:       90 * time.Second,
}

// DefaultOptions returns the default client options with security-focused defaults.
func DefaultOptions() ClientOptions {
	return defaultClientOptions
}

// withDefaults fills any zero-valued field of opts from defaultClientOptions.
func (opts ClientOptions) withDefaults() ClientOptions {
	d := defaultClientOptions
	if opts.Timeout == 0 {
		opts.Timeout = d.Timeout
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = d.DialTimeout
	}
	if opts.TLSHandshakeTimeout == 0 {
		opts.TLSHandshakeTimeout = d.TLSHandshakeTimeout
	}
	if opts.ResponseHeaderTimeout == 0 {
		opts.ResponseHeaderTimeout = d.ResponseHeaderTimeout
	}
	if opts.MaxRedirects == 0 {
		opts.MaxRedirects = d.MaxRedirects
	}
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = d.MaxIdleConns
	}
	if opts.IdleConnTimeout == 0 {
		opts.IdleConnTimeout = d.IdleConnTimeout
	}
	return opts
}

// NewSecureClient creates an HTTP client with SSRF protection and security hardening.
//
// Security features:
//   - DisableCompression: true by default - prevents decompression bomb attacks
//   - SSRF protection via redirect validation (blocks private, loopback, link-local IPs)
//   - DNS rebinding protection (resolves hostnames and validates all IPs)
//   - HTTPS-only redirects
//   - Configurable redirect chain limit
func NewSecureClient(opts ClientOptions) *http.Client {
	opts = opts.withDefaults()

	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			DisableCompression: !opts.EnableCompression,
			DialContext: (&net.Dialer{
				Timeout:   opts.DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   opts.TLSHandshakeTimeout,
			ResponseHeaderTimeout: opts.ResponseHeaderTimeout,
			ExpectContinueTimeout: 1 * time.Second,
			MaxIdleConns:          opts.MaxIdleConns,
			IdleConnTimeout:       opts.IdleConnTimeout,
		},
		CheckRedirect: redirectGuard(opts.MaxRedirects),
	}
}

// redirectGuard builds the http.Client.CheckRedirect function that enforces
// the HTTPS-only and SSRF rules for every hop a download follows.
func redirectGuard(maxRedirects int) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if req.URL.Scheme != "https" {
			return fmt.Errorf("redirect to non-HTTPS URL is not allowed: %s", req.URL)
		}

		if len(via) >= maxRedirects {
			return fmt.Errorf("too many redirects")
		}

		host := req.URL.Hostname()

		if ip := net.ParseIP(host); ip != nil {
			return ValidateIP(ip, host)
		}

		// Hostname is a domain name: resolve it and validate every
		// returned address, not just the first, so a redirect can't
		// rebind through a name that resolves to both a public and a
		// blocked address.
		ips, err := net.LookupIP(host)
		if err != nil {
			return fmt.Errorf("failed to resolve redirect host %s: %w", host, err)
		}
		for _, ip := range ips {
			if err := ValidateIP(ip, host); err != nil {
				return fmt.Errorf("refusing redirect: %s resolves to blocked IP %s", host, ip)
			}
		}
		return nil
	}
}
