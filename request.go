package fetch

import (
	"context"
	urlpkg "net/url"
	"strings"
	"time"
)

// RedirectMode selects how the redirect state machine handles a 3xx
// response.
type RedirectMode int

const (
	// FollowRedirect re-dispatches the request at the new location.
	FollowRedirect RedirectMode = iota
	// ManualRedirect returns the 3xx response to the caller as-is.
	ManualRedirect
	// ErrorRedirect fails with KindNoRedirect on any redirect.
	ErrorRedirect
)

const defaultFollowLimit = 20

// RedirectPolicy is an optional veto hook invoked after the builtin
// method/body rewriting and hop-count check but before re-dispatch.
// next is the request about to be sent; chain holds every request
// dispatched so far in this fetch, oldest first. Returning a non-nil
// error aborts the redirect with KindNoRedirect. It is nil by
// default, so nothing is vetoed unless a caller installs one.
type RedirectPolicy func(next *Request, chain []*Request) error

// Request is the immutable (except for its owned Body) descriptor of
// an outgoing fetch.
type Request struct {
	rawURL         *urlpkg.URL
	method         string
	headers        *Headers
	body           *BodySource
	redirectMode   RedirectMode
	followLimit    int
	hopCounter     int
	compress       bool
	timeout        time.Duration
	maxBytes       int64
	agent          *Agent
	redirectPolicy RedirectPolicy

	// bodyMoved is set when NewRequestFrom transfers the body-source to
	// a derived request, leaving this one with a null body.
	bodyMoved bool
	// bodyView lazily wraps body in the same single-use consumption
	// protocol a Response exposes.
	bodyView *Body
}

// RequestOption configures a Request at construction time.
type RequestOption func(*Request)

func WithMethod(method string) RequestOption {
	return func(r *Request) { r.method = normalizeMethod(method) }
}

func WithHeaders(h *Headers) RequestOption {
	return func(r *Request) { r.headers = h.Clone() }
}

func WithHeader(name, value string) RequestOption {
	return func(r *Request) { r.headers.Append(name, value) }
}

func WithBody(body *BodySource) RequestOption {
	return func(r *Request) { r.body = body }
}

func WithRedirect(mode RedirectMode) RequestOption {
	return func(r *Request) { r.redirectMode = mode }
}

func WithFollow(limit int) RequestOption {
	return func(r *Request) { r.followLimit = limit }
}

func WithCompress(compress bool) RequestOption {
	return func(r *Request) { r.compress = compress }
}

func WithTimeout(d time.Duration) RequestOption {
	return func(r *Request) { r.timeout = d }
}

func WithMaxResponseBytes(n int64) RequestOption {
	return func(r *Request) { r.maxBytes = n }
}

func WithAgent(a *Agent) RequestOption {
	return func(r *Request) { r.agent = a }
}

func WithRedirectPolicy(p RedirectPolicy) RequestOption {
	return func(r *Request) { r.redirectPolicy = p }
}

func normalizeMethod(method string) string {
	if method == "" {
		return "GET"
	}
	return strings.ToUpper(method)
}

func requiresNullBody(method string) bool {
	return method == "GET" || method == "HEAD"
}

// NewRequest builds a Request from a raw URL string, applying opts in order.
func NewRequest(rawURL string, opts ...RequestOption) (*Request, error) {
	u, err := validateURL(rawURL)
	if err != nil {
		return nil, err
	}
	return newRequestFromURL(u, opts...)
}

// NewRequestFromURL builds a Request from an already-parsed URL.
func NewRequestFromURL(u *urlpkg.URL, opts ...RequestOption) (*Request, error) {
	validated, err := validateURL(u)
	if err != nil {
		return nil, err
	}
	return newRequestFromURL(validated, opts...)
}

func newRequestFromURL(u *urlpkg.URL, opts ...RequestOption) (*Request, error) {
	r := &Request{
		rawURL:      u,
		method:      "GET",
		headers:     NewHeaders(),
		body:        NullBody(),
		followLimit: defaultFollowLimit,
		compress:    true,
		agent:       defaultAgent,
	}
	for _, opt := range opts {
		opt(r)
	}
	if requiresNullBody(r.method) && !r.body.isNull() {
		return nil, typeError("Request with GET/HEAD method cannot have body")
	}
	return r, nil
}

// NewRequestFrom builds a Request inheriting every field from base
// unless overridden by opts. The body is moved, not copied: base's
// body-source is transferred to the new Request and base is left
// with a null body.
func NewRequestFrom(base *Request, opts ...RequestOption) (*Request, error) {
	r := &Request{
		rawURL:         base.rawURL,
		method:         base.method,
		headers:        base.headers.Clone(),
		body:           base.body,
		redirectMode:   base.redirectMode,
		followLimit:    base.followLimit,
		hopCounter:     base.hopCounter,
		compress:       base.compress,
		timeout:        base.timeout,
		maxBytes:       base.maxBytes,
		agent:          base.agent,
		redirectPolicy: base.redirectPolicy,
	}
	if !base.body.isNull() {
		base.bodyMoved = true
	}
	base.body = NullBody()
	for _, opt := range opts {
		opt(r)
	}
	if requiresNullBody(r.method) && !r.body.isNull() {
		return nil, typeError("Request with GET/HEAD method cannot have body")
	}
	return r, nil
}

func (r *Request) URL() *urlpkg.URL       { return r.rawURL }
func (r *Request) Method() string         { return r.method }
func (r *Request) Headers() *Headers      { return r.headers }
func (r *Request) Redirect() RedirectMode { return r.redirectMode }
func (r *Request) Follow() int            { return r.followLimit }
func (r *Request) Compress() bool         { return r.compress }
func (r *Request) Counter() int           { return r.hopCounter }
func (r *Request) Agent() *Agent          { return r.agent }

// Body returns the request's body-source.
func (r *Request) Body() *BodySource { return r.body }

// BodyUsed reports whether the request's body has been consumed through
// one of the accessors, or moved away via NewRequestFrom.
func (r *Request) BodyUsed() bool {
	return r.bodyMoved || (r.bodyView != nil && r.bodyView.Used())
}

func (r *Request) bodyHandle() *Body {
	if r.bodyView == nil {
		contentType, ok := r.headers.Get("content-type")
		if !ok {
			contentType, _ = negotiateContentType(r.body)
		}
		r.bodyView = newBody(r.body, r.maxBytes, r.timeout, r.rawURL.String(), contentType, defaultLogger)
	}
	return r.bodyView
}

// Bytes consumes the request body as raw bytes, with the same
// single-use contract as Response's Body.
func (r *Request) Bytes(ctx context.Context) ([]byte, error) {
	return r.bodyHandle().Bytes(ctx)
}

// ArrayBuffer consumes the request body as an owned contiguous buffer.
func (r *Request) ArrayBuffer(ctx context.Context) ([]byte, error) {
	return r.bodyHandle().ArrayBuffer(ctx)
}

// Text consumes the request body as UTF-8 text.
func (r *Request) Text(ctx context.Context) (string, error) {
	return r.bodyHandle().Text(ctx)
}

// JSON consumes the request body and unmarshals it into v.
func (r *Request) JSON(ctx context.Context, v interface{}) error {
	return r.bodyHandle().JSON(ctx, v)
}

// Blob consumes the request body as a Blob typed by its Content-Type.
func (r *Request) Blob(ctx context.Context) (*Blob, error) {
	return r.bodyHandle().Blob(ctx)
}

// FormData consumes the request body as form data.
func (r *Request) FormData(ctx context.Context) (*FormData, error) {
	return r.bodyHandle().FormData(ctx)
}

// Clone returns an independent copy of r. A materialized body-source is
// shared by reference; a stream body is teed so both requests can send
// it. Cloning fails once the body has been consumed or moved.
func (r *Request) Clone() (*Request, error) {
	if r.BodyUsed() {
		return nil, typeError("cannot clone body after it is used")
	}
	cloneSrc := r.body
	if r.body.tag == sourceReader {
		bc := newTeeBroadcast(&nodeStreamAdapter{src: r.body.reader, url: r.rawURL.String()})
		r.body = ReaderBody(bc.branchA())
		r.bodyView = nil
		cloneSrc = ReaderBody(bc.branchB())
	}
	return &Request{
		rawURL:         r.rawURL,
		method:         r.method,
		headers:        r.headers.Clone(),
		body:           cloneSrc,
		redirectMode:   r.redirectMode,
		followLimit:    r.followLimit,
		hopCounter:     r.hopCounter,
		compress:       r.compress,
		timeout:        r.timeout,
		maxBytes:       r.maxBytes,
		agent:          r.agent,
		redirectPolicy: r.redirectPolicy,
	}, nil
}
