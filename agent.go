package fetch

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http2"
)

// Agent is the transport collaborator of a fetch: it owns TCP/TLS
// connection establishment, pooling and HTTP/1.1-versus-HTTP/2
// framing, none of which this package reimplements. It wraps
// net/http.Client/Transport, configured for transparent
// HTTP/2-over-TLS via golang.org/x/net/http2.
type Agent struct {
	client *http.Client
	t      *http.Transport
}

// AgentOption configures an Agent at construction time.
type AgentOption func(*http.Transport)

// WithTLSClientConfig sets the TLS configuration used for https:// connections.
func WithTLSClientConfig(cfg *tls.Config) AgentOption {
	return func(t *http.Transport) { t.TLSClientConfig = cfg }
}

// WithDialContext overrides how the Agent dials plain TCP connections.
func WithDialContext(dial func(ctx context.Context, network, addr string) (net.Conn, error)) AgentOption {
	return func(t *http.Transport) { t.DialContext = dial }
}

// WithMaxIdleConns bounds the pooled idle connections kept across all hosts.
func WithMaxIdleConns(n int) AgentOption {
	return func(t *http.Transport) { t.MaxIdleConns = n }
}

// WithMaxIdleConnsPerHost bounds the pooled idle connections kept per host.
func WithMaxIdleConnsPerHost(n int) AgentOption {
	return func(t *http.Transport) { t.MaxIdleConnsPerHost = n }
}

// WithIdleConnTimeout sets how long an idle pooled connection survives.
func WithIdleConnTimeout(d time.Duration) AgentOption {
	return func(t *http.Transport) { t.IdleConnTimeout = d }
}

// WithResponseHeaderTimeout bounds the wait for response headers once
// the request has been written, independent of the per-Request
// request-timeout enforced in transport.go.
func WithResponseHeaderTimeout(d time.Duration) AgentOption {
	return func(t *http.Transport) { t.ResponseHeaderTimeout = d }
}

// WithProxy overrides the per-request proxy selection.
func WithProxy(proxy func(*http.Request) (*url.URL, error)) AgentOption {
	return func(t *http.Transport) { t.Proxy = proxy }
}

// NewAgent builds an Agent from net/http.DefaultTransport's defaults,
// upgraded to negotiate HTTP/2 over TLS, with opts applied on top.
func NewAgent(opts ...AgentOption) *Agent {
	base := http.DefaultTransport.(*http.Transport)
	t := base.Clone()
	// Response decoding is done by buildResponse, and only when the
	// Request asks for it; the transport itself never adds an
	// Accept-Encoding header or decompresses.
	t.DisableCompression = true
	for _, opt := range opts {
		opt(t)
	}
	// ConfigureTransport registers its own "h2" entry in TLSNextProto;
	// on failure the error is logged and the transport is used as is.
	if err := http2.ConfigureTransport(t); err != nil {
		defaultLogger.Warnf("failed to configure http2 transport: %v", err)
	}
	return &Agent{client: &http.Client{Transport: t, CheckRedirect: noFollowRedirects}, t: t}
}

func noFollowRedirects(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

var defaultAgent = NewAgent()

// RoundTrip dispatches req using the Agent's underlying http.Client,
// never following redirects itself: the redirect state machine in
// redirect.go owns that decision.
func (a *Agent) RoundTrip(req *http.Request) (*http.Response, error) {
	return a.client.Do(req)
}

// CloseIdleConnections closes any connections sitting idle in the
// pool, so long-lived callers can release them between bursts of
// fetches.
func (a *Agent) CloseIdleConnections() {
	a.t.CloseIdleConnections()
}
