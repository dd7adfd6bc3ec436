package fetch

import (
	"net/url"
	"testing"

	"github.com/relayfetch/fetch/internal/testutil"
)

func TestNegotiateContentTypeString(t *testing.T) {
	ct, ok := negotiateContentType(StringBody("hi"))
	if !ok {
		t.Fatal("expected a content-type")
	}
	testutil.AssertEqual(t, "text/plain;charset=UTF-8", ct)
}

func TestNegotiateContentTypeURLEncoded(t *testing.T) {
	ct, ok := negotiateContentType(URLEncodedBody(url.Values{"a": {"1"}}))
	if !ok {
		t.Fatal("expected a content-type")
	}
	testutil.AssertEqual(t, "application/x-www-form-urlencoded;charset=UTF-8", ct)
}

func TestNegotiateContentTypeNullHasNone(t *testing.T) {
	_, ok := negotiateContentType(NullBody())
	if ok {
		t.Fatal("expected no content-type for a null body")
	}
}

func TestNegotiateContentLengthKnownSources(t *testing.T) {
	length, ok := negotiateContentLength(StringBody("hello"))
	if !ok {
		t.Fatal("expected known length")
	}
	testutil.AssertEqual(t, int64(5), length)
}

func TestNegotiateContentLengthStreamUnknown(t *testing.T) {
	_, ok := negotiateContentLength(ReaderBody(nil))
	if ok {
		t.Fatal("expected unknown length for a stream source")
	}
}

func TestApplyDefaultHeadersSetsDefaults(t *testing.T) {
	h := NewHeaders()
	applyDefaultHeaders(h, StringBody("hi"), true)

	ua, _ := h.Get("user-agent")
	testutil.AssertEqual(t, defaultUserAgent, ua)

	accept, _ := h.Get("accept")
	testutil.AssertEqual(t, "*/*", accept)

	enc, _ := h.Get("accept-encoding")
	testutil.AssertEqual(t, "gzip,deflate,br,zstd", enc)

	ct, _ := h.Get("content-type")
	testutil.AssertEqual(t, "text/plain;charset=UTF-8", ct)

	cl, _ := h.Get("content-length")
	testutil.AssertEqual(t, "2", cl)
}

func TestApplyDefaultHeadersDoesNotOverrideCaller(t *testing.T) {
	h := NewHeaders()
	h.Set("User-Agent", "custom/1")
	applyDefaultHeaders(h, StringBody("hi"), true)

	ua, _ := h.Get("user-agent")
	testutil.AssertEqual(t, "custom/1", ua)
}

func TestApplyDefaultHeadersChunkedForStream(t *testing.T) {
	h := NewHeaders()
	applyDefaultHeaders(h, ReaderBody(nil), true)

	te, ok := h.Get("transfer-encoding")
	if !ok {
		t.Fatal("expected Transfer-Encoding to be set for a stream body")
	}
	testutil.AssertEqual(t, "chunked", te)
	if h.Has("content-length") {
		t.Fatal("expected no Content-Length for a stream body")
	}
}
