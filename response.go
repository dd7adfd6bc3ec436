package fetch

import "net/http"

// Response is the immutable (except for its owned Body) terminal
// result of a fetch.
type Response struct {
	url        string
	status     int
	statusText string
	headers    *Headers
	Body       *Body
}

// ResponseOption configures a synthesized Response at construction time.
type ResponseOption func(*Response)

func WithStatus(status int) ResponseOption {
	return func(r *Response) { r.status = status }
}

func WithStatusText(text string) ResponseOption {
	return func(r *Response) { r.statusText = text }
}

func WithResponseHeaders(h *Headers) ResponseOption {
	return func(r *Response) { r.headers = h.Clone() }
}

func WithResponseURL(u string) ResponseOption {
	return func(r *Response) { r.url = u }
}

// NewResponse synthesizes a Response directly from a body-source,
// without any transport involved. The status defaults to 200; pass
// NullBody() for a bodiless response (its Text resolves to "" while
// its JSON fails with KindInvalidJSON).
func NewResponse(source *BodySource, opts ...ResponseOption) *Response {
	r := &Response{status: 200, headers: NewHeaders()}
	for _, opt := range opts {
		opt(r)
	}
	if r.statusText == "" {
		r.statusText = http.StatusText(r.status)
	}
	contentType, _ := r.headers.Get("content-type")
	r.Body = newBody(source, 0, 0, r.url, contentType, defaultLogger)
	return r
}

// OK reports whether status is in [200, 300).
func (r *Response) OK() bool {
	return r.status >= 200 && r.status < 300
}

func (r *Response) URL() string        { return r.url }
func (r *Response) Status() int        { return r.status }
func (r *Response) StatusText() string { return r.statusText }
func (r *Response) Headers() *Headers  { return r.headers }
func (r *Response) BodyUsed() bool     { return r.Body.Used() }

// Clone returns an independent Response backed by a clone of Body.
func (r *Response) Clone() (*Response, error) {
	clonedBody, err := r.Body.Clone()
	if err != nil {
		return nil, err
	}
	return &Response{
		url:        r.url,
		status:     r.status,
		statusText: r.statusText,
		headers:    r.headers.Clone(),
		Body:       clonedBody,
	}, nil
}
