package fetch

import (
	"context"
	"strings"
	"testing"

	"github.com/relayfetch/fetch/internal/testutil"
)

func TestNewRequestDefaults(t *testing.T) {
	r, err := NewRequest("https://example.com/a")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "GET", r.Method())
	testutil.AssertEqual(t, FollowRedirect, r.Redirect())
	testutil.AssertEqual(t, defaultFollowLimit, r.Follow())
	if !r.Compress() {
		t.Fatal("expected compress to default true")
	}
}

func TestNewRequestMethodNormalized(t *testing.T) {
	r, err := NewRequest("https://example.com/a", WithMethod("post"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "POST", r.Method())
}

func TestNewRequestGetWithBodyRejected(t *testing.T) {
	_, err := NewRequest("https://example.com/a", WithBody(StringBody("x")))
	testutil.AssertErrorKind(t, err, KindTypeError)
}

func TestNewRequestHeadWithBodyRejected(t *testing.T) {
	_, err := NewRequest("https://example.com/a", WithMethod("HEAD"), WithBody(StringBody("x")))
	testutil.AssertErrorKind(t, err, KindTypeError)
}

func TestNewRequestInvalidURL(t *testing.T) {
	_, err := NewRequest("/relative/only")
	testutil.AssertErrorKind(t, err, KindTypeError)
}

func TestNewRequestFromMovesBody(t *testing.T) {
	base, err := NewRequest("https://example.com/a", WithMethod("POST"), WithBody(StringBody("payload")))
	testutil.AssertNoError(t, err)

	derived, err := NewRequestFrom(base)
	testutil.AssertNoError(t, err)

	if base.BodyUsed() == false {
		t.Fatal("expected base's body to be moved away")
	}
	if derived.BodyUsed() {
		t.Fatal("expected derived request to own the body")
	}
}

func TestNewRequestFromOverridesApply(t *testing.T) {
	base, err := NewRequest("https://example.com/a")
	testutil.AssertNoError(t, err)

	derived, err := NewRequestFrom(base, WithMethod("DELETE"), WithFollow(3))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "DELETE", derived.Method())
	testutil.AssertEqual(t, 3, derived.Follow())
}

func TestRequestBodyConsumers(t *testing.T) {
	r, err := NewRequest("https://example.com/a", WithMethod("POST"), WithBody(StringBody(`{"a":1}`)))
	testutil.AssertNoError(t, err)
	if r.BodyUsed() {
		t.Fatal("expected fresh request body to be unused")
	}

	var v struct {
		A int `json:"a"`
	}
	testutil.AssertNoError(t, r.JSON(context.Background(), &v))
	testutil.AssertEqual(t, 1, v.A)
	if !r.BodyUsed() {
		t.Fatal("expected BodyUsed after consumption")
	}
	_, err = r.Text(context.Background())
	testutil.AssertErrorKind(t, err, KindTypeError)
}

func TestRequestCloneSharesMaterializedBody(t *testing.T) {
	r, err := NewRequest("https://example.com/a", WithMethod("POST"), WithBody(StringBody("payload")))
	testutil.AssertNoError(t, err)

	clone, err := r.Clone()
	testutil.AssertNoError(t, err)

	a, err := r.Text(context.Background())
	testutil.AssertNoError(t, err)
	b, err := clone.Text(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "payload", a)
	testutil.AssertEqual(t, "payload", b)
}

func TestRequestCloneTeesStreamBody(t *testing.T) {
	r, err := NewRequest("https://example.com/a", WithMethod("POST"), WithBody(ReaderBody(strings.NewReader("stream"))))
	testutil.AssertNoError(t, err)

	clone, err := r.Clone()
	testutil.AssertNoError(t, err)

	a, err := r.Text(context.Background())
	testutil.AssertNoError(t, err)
	b, err := clone.Text(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "stream", a)
	testutil.AssertEqual(t, "stream", b)
}

func TestRequestCloneAfterUseFails(t *testing.T) {
	r, err := NewRequest("https://example.com/a", WithMethod("POST"), WithBody(StringBody("x")))
	testutil.AssertNoError(t, err)
	_, err = r.Bytes(context.Background())
	testutil.AssertNoError(t, err)

	_, err = r.Clone()
	testutil.AssertErrorKind(t, err, KindTypeError)
}

func TestNewRequestFromHeadersAreIndependent(t *testing.T) {
	base, err := NewRequest("https://example.com/a")
	testutil.AssertNoError(t, err)
	base.Headers().Set("X-Foo", "1")

	derived, err := NewRequestFrom(base)
	testutil.AssertNoError(t, err)
	derived.Headers().Set("X-Foo", "2")

	v, _ := base.Headers().Get("x-foo")
	testutil.AssertEqual(t, "1", v)
}
