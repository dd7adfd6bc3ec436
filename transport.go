package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/relayfetch/fetch/internal/decode"
)

// dispatch builds an *http.Request from req's current state (URL,
// method, headers, body source), fills in the negotiated default
// headers, sends it through req's Agent, enforces the request-timeout
// as a deadline on the arrival of response headers (net/http.Client.Do
// itself returns as soon as headers are in, before the body is read,
// so racing it against a timer gives exactly that deadline) and
// installs a decompressor before wrapping the result as a Response.
//
// The outgoing request runs on a cancelable child context: when the
// timer fires, cancel aborts the in-flight round trip and tears down
// its connection rather than leaving it running behind the error. On
// success the cancel is handed to the Response body and invoked once
// the body is closed.
func dispatch(ctx context.Context, req *Request) (*Response, error) {
	headers := req.headers.Clone()
	applyDefaultHeaders(headers, req.body, req.compress)

	bodyReader, err := req.body.toReader(req.rawURL.String())
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithCancel(ctx)
	httpReq, err := http.NewRequestWithContext(reqCtx, req.method, req.rawURL.String(), bodyReader)
	if err != nil {
		cancel()
		return nil, systemError("failed to build outgoing request", err)
	}
	for _, kv := range headers.Entries() {
		httpReq.Header.Add(kv.Key, kv.Value)
	}
	if host, ok := headers.Get("host"); ok {
		httpReq.Host = host
	}
	// net/http frames from the ContentLength field, not the header map;
	// without this a []byte body behind a plain io.Reader would go out
	// chunked even though its length is known.
	if length, ok := negotiateContentLength(req.body); ok {
		httpReq.ContentLength = length
	}

	agent := req.agent
	if agent == nil {
		agent = defaultAgent
	}

	defaultLogger.Debugf("dispatching %s %s", req.method, req.rawURL)

	type result struct {
		resp *http.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := agent.RoundTrip(httpReq)
		done <- result{resp, err}
	}()

	if req.timeout > 0 {
		timer := time.NewTimer(req.timeout)
		defer timer.Stop()
		select {
		case r := <-done:
			if r.err != nil {
				cancel()
				defaultLogger.Errorf("request to %s failed: %v", req.rawURL, r.err)
				return nil, systemError("request failed", r.err)
			}
			return buildResponse(req, r.resp, cancel)
		case <-timer.C:
			cancel()
			defaultLogger.Warnf("request timeout after %s for %s %s", req.timeout, req.method, req.rawURL)
			return nil, newError(KindRequestTimeout, "request timeout", nil)
		case <-ctx.Done():
			cancel()
			return nil, systemError("request canceled", ctx.Err())
		}
	}

	select {
	case r := <-done:
		if r.err != nil {
			cancel()
			defaultLogger.Errorf("request to %s failed: %v", req.rawURL, r.err)
			return nil, systemError("request failed", r.err)
		}
		return buildResponse(req, r.resp, cancel)
	case <-ctx.Done():
		cancel()
		return nil, systemError("request canceled", ctx.Err())
	}
}

// buildResponse wraps an *http.Response as a Response, installing a
// content decoder only when compress was requested, the
// method isn't HEAD, the status isn't 204/304, and Content-Encoding
// names a decoder this package supports. cancel is tied to the body's
// Close so the request context is released once the body is consumed.
func buildResponse(req *Request, httpResp *http.Response, cancel context.CancelFunc) (*Response, error) {
	contentEncoding := httpResp.Header.Get("Content-Encoding")
	var body io.ReadCloser = &cancelOnClose{ReadCloser: httpResp.Body, cancel: cancel}
	if req.compress && req.method != http.MethodHead &&
		httpResp.StatusCode != http.StatusNoContent && httpResp.StatusCode != http.StatusNotModified &&
		decode.Supported(contentEncoding) {
		defaultLogger.Debugf("decoding %s response body from %s", contentEncoding, req.rawURL)
		body = decode.NewContentDecoder(body, contentEncoding)
		httpResp.Header.Del("Content-Encoding")
		httpResp.Header.Del("Content-Length")
	}

	headers, err := headersFromHTTP(httpResp.Header)
	if err != nil {
		cancel()
		return nil, err
	}

	contentType, _ := headers.Get("content-type")
	respBody := newBody(ReaderBody(body), req.maxBytes, req.timeout, req.rawURL.String(), contentType, defaultLogger)

	return &Response{
		url:        req.rawURL.String(),
		status:     httpResp.StatusCode,
		statusText: http.StatusText(httpResp.StatusCode),
		headers:    headers,
		Body:       respBody,
	}, nil
}

// cancelOnClose releases the request context along with the response
// body, returning its pooled connection.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// headersFromHTTP converts an http.Header into a Headers, preserving
// multi-valued headers.
func headersFromHTTP(h http.Header) (*Headers, error) {
	m := make(map[string][]string, len(h))
	for k, v := range h {
		m[k] = v
	}
	return NewHeadersFromMultiMap(m)
}
