package fetch

import (
	"context"
	"testing"

	"github.com/relayfetch/fetch/internal/testutil"
)

func TestResponseOK(t *testing.T) {
	r := &Response{status: 200}
	if !r.OK() {
		t.Fatal("expected 200 to be OK")
	}
	r.status = 404
	if r.OK() {
		t.Fatal("expected 404 to not be OK")
	}
}

func TestResponseCloneIndependentBodies(t *testing.T) {
	h := NewHeaders()
	h.Set("Content-Type", "text/plain")
	r := &Response{
		url:     "https://example.com/a",
		status:  200,
		headers: h,
		Body:    newBody(StringBody("payload"), 0, 0, "https://example.com/a", "text/plain", nil),
	}

	clone, err := r.Clone()
	testutil.AssertNoError(t, err)

	original, err := r.Body.Text(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "payload", original)

	cloned, err := clone.Body.Text(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "payload", cloned)

	clone.Headers().Set("Content-Type", "application/json")
	ct, _ := r.Headers().Get("content-type")
	testutil.AssertEqual(t, "text/plain", ct)
}

func TestNewResponseRoundTripsBytes(t *testing.T) {
	payload := []byte("raw payload bytes")

	r := NewResponse(BytesBody(payload))
	data, err := r.Body.Bytes(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, string(payload), string(data))

	r = NewResponse(BytesBody(payload))
	text, err := r.Body.Text(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, string(payload), text)

	r = NewResponse(BytesBody(payload), WithResponseHeaders(mustHeaders(t, "Content-Type", "application/octet-stream")))
	blob, err := r.Body.Blob(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, string(payload), string(blob.Data))
	testutil.AssertEqual(t, "application/octet-stream", blob.ContentType)
}

func TestNewResponseStatusDefaultsAndOptions(t *testing.T) {
	r := NewResponse(NullBody())
	testutil.AssertEqual(t, 200, r.Status())
	testutil.AssertEqual(t, "OK", r.StatusText())

	r = NewResponse(NullBody(), WithStatus(418), WithResponseURL("https://example.com/teapot"))
	testutil.AssertEqual(t, 418, r.Status())
	testutil.AssertEqual(t, "https://example.com/teapot", r.URL())
	if r.OK() {
		t.Fatal("expected 418 to not be OK")
	}
}

// An empty body's Text resolves to "" while its JSON fails; the
// asymmetry is deliberate.
func TestNewResponseEmptyBodyTextAndJSONAsymmetry(t *testing.T) {
	r := NewResponse(NullBody())
	text, err := r.Body.Text(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "", text)

	r = NewResponse(NullBody())
	var v interface{}
	err = r.Body.JSON(context.Background(), &v)
	testutil.AssertErrorKind(t, err, KindInvalidJSON)
}

func mustHeaders(t *testing.T, pairs ...string) *Headers {
	t.Helper()
	h := NewHeaders()
	for i := 0; i+1 < len(pairs); i += 2 {
		testutil.AssertNoError(t, h.Set(pairs[i], pairs[i+1]))
	}
	return h
}

func TestResponseCloneAfterUseFails(t *testing.T) {
	r := &Response{Body: newBody(StringBody("x"), 0, 0, "https://example.com", "text/plain", nil)}
	r.Body.Bytes(context.Background())
	_, err := r.Clone()
	testutil.AssertErrorKind(t, err, KindTypeError)
}
