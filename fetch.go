package fetch

import (
	"context"
)

// Fetch validates rawURL, builds a Request from opts, dispatches it
// and follows redirects, returning the terminal Response. It is the
// top-level entry point composing validation, content negotiation,
// transport dispatch and the redirect loop.
func Fetch(rawURL string, opts ...RequestOption) (*Response, error) {
	return FetchContext(context.Background(), rawURL, opts...)
}

// FetchContext is Fetch with an explicit context governing
// cancellation of the in-flight dispatch and any in-progress body read.
func FetchContext(ctx context.Context, rawURL string, opts ...RequestOption) (*Response, error) {
	req, err := NewRequest(rawURL, opts...)
	if err != nil {
		return nil, err
	}
	return Do(ctx, req)
}

// Do dispatches an already-built Request and follows redirects,
// returning the terminal Response.
func Do(ctx context.Context, req *Request) (*Response, error) {
	return runRedirectLoop(ctx, req)
}
