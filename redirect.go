package fetch

import (
	"context"
	"net/http"
)

var redirectStatuses = map[int]bool{
	301: true, 302: true, 303: true, 307: true, 308: true,
}

// runRedirectLoop drives the dispatch → inspect → follow/return state
// machine until a terminal Response is reached.
func runRedirectLoop(ctx context.Context, req *Request) (*Response, error) {
	chain := []*Request{req}
	current := req

	for {
		resp, err := dispatch(ctx, current)
		if err != nil {
			return nil, err
		}

		if !redirectStatuses[resp.status] {
			return resp, nil
		}
		location, ok := resp.headers.Get("location")
		if !ok || location == "" {
			return resp, nil
		}

		switch current.redirectMode {
		case ManualRedirect:
			return resp, nil
		case ErrorRedirect:
			resp.Body.discard()
			defaultLogger.Warnf("redirect to %s refused in \"error\" mode", location)
			return nil, newError(KindNoRedirect, "redirect encountered in \"error\" mode", nil)
		}

		if current.hopCounter+1 > current.followLimit {
			resp.Body.discard()
			defaultLogger.Warnf("maximum redirect (%d) reached at %s", current.followLimit, current.rawURL)
			return nil, newError(KindMaxRedirect, "maximum redirect reached", nil)
		}

		nextURL, err := current.rawURL.Parse(location)
		if err != nil {
			resp.Body.discard()
			return nil, systemError("invalid redirect location", err)
		}

		nextMethod := current.method
		nextBody := current.body
		switch resp.status {
		case 301, 302:
			if current.method == http.MethodPost {
				nextMethod = http.MethodGet
				nextBody = NullBody()
			}
		case 303:
			nextMethod = http.MethodGet
			nextBody = NullBody()
		case 307, 308:
			if !nextBody.isReplayable() && nextMethod != http.MethodGet && nextMethod != http.MethodHead {
				resp.Body.discard()
				defaultLogger.Warnf("cannot follow %d redirect from %s: stream body is not replayable", resp.status, current.rawURL)
				return nil, newError(KindUnsupportedRedirect, "unsupported redirect with a non-replayable body", nil)
			}
		}

		next := &Request{
			rawURL:         nextURL,
			method:         nextMethod,
			headers:        current.headers.Clone(),
			body:           nextBody,
			redirectMode:   current.redirectMode,
			followLimit:    current.followLimit,
			hopCounter:     current.hopCounter + 1,
			compress:       current.compress,
			timeout:        current.timeout,
			maxBytes:       current.maxBytes,
			agent:          current.agent,
			redirectPolicy: current.redirectPolicy,
		}

		if next.redirectPolicy != nil {
			if err := next.redirectPolicy(next, chain); err != nil {
				resp.Body.discard()
				defaultLogger.Warnf("redirect to %s rejected by policy: %v", nextURL, err)
				return nil, newError(KindNoRedirect, "redirect rejected by policy", err)
			}
		}

		resp.Body.discard()
		defaultLogger.Debugf("following %d redirect to %s (hop %d of %d)", resp.status, nextURL, next.hopCounter, next.followLimit)
		chain = append(chain, next)
		current = next
	}
}
