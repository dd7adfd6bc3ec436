package fetch

import (
	"context"
	"io"
	"testing"

	"github.com/relayfetch/fetch/internal/testutil"
)

func TestFormDataAppendAndGet(t *testing.T) {
	f := NewFormData()
	f.Append("name", "roc")
	f.Append("tag", "go")
	f.Append("tag", "http")

	v, ok := f.Get("name")
	if !ok {
		t.Fatal("expected name to be present")
	}
	testutil.AssertEqual(t, "roc", v)
	testutil.AssertEqual(t, []string{"go", "http"}, f.GetAll("tag"))
}

func TestFormDataEncodeAndParseMultipartRoundTrip(t *testing.T) {
	f := NewFormData()
	f.Append("name", "roc")

	contentType, body, err := f.encodeMultipart()
	testutil.AssertNoError(t, err)

	data, err := io.ReadAll(body)
	testutil.AssertNoError(t, err)

	parsed, err := parseFormData(contentType, data)
	testutil.AssertNoError(t, err)

	v, ok := parsed.Get("name")
	if !ok {
		t.Fatal("expected name to round-trip")
	}
	testutil.AssertEqual(t, "roc", v)
}

func TestFormDataBoundaryStableAcrossEncodings(t *testing.T) {
	f := NewFormData()
	f.Append("a", "1")

	ct1, _, err := f.encodeMultipart()
	testutil.AssertNoError(t, err)
	ct2, _, err := f.encodeMultipart()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ct1, ct2)
}

func TestParseFormDataURLEncoded(t *testing.T) {
	parsed, err := parseFormData("application/x-www-form-urlencoded", []byte("a=1&b=2"))
	testutil.AssertNoError(t, err)

	v, _ := parsed.Get("a")
	testutil.AssertEqual(t, "1", v)
}

func TestParseFormDataUnsupportedContentType(t *testing.T) {
	_, err := parseFormData("application/json", []byte(`{}`))
	testutil.AssertErrorKind(t, err, KindTypeError)
}

func TestBodyFormDataAccessor(t *testing.T) {
	f := NewFormData()
	f.Append("a", "1")
	contentType, body, err := f.encodeMultipart()
	testutil.AssertNoError(t, err)
	data, err := io.ReadAll(body)
	testutil.AssertNoError(t, err)

	b := newBody(BytesBody(data), 0, 0, "https://example.com", contentType, nil)
	parsed, err := b.FormData(context.Background())
	testutil.AssertNoError(t, err)
	v, _ := parsed.Get("a")
	testutil.AssertEqual(t, "1", v)
}
