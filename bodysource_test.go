package fetch

import (
	"io"
	"net/url"
	"testing"

	"github.com/relayfetch/fetch/internal/testutil"
)

func readAll(t *testing.T, src *BodySource) string {
	t.Helper()
	r, err := src.toReader("https://example.com")
	testutil.AssertNoError(t, err)
	data, err := io.ReadAll(r)
	testutil.AssertNoError(t, err)
	return string(data)
}

func TestBodySourceNull(t *testing.T) {
	testutil.AssertEqual(t, "", readAll(t, NullBody()))
	if !NullBody().isNull() {
		t.Fatal("expected NullBody to report isNull")
	}
}

func TestBodySourceString(t *testing.T) {
	testutil.AssertEqual(t, "hello", readAll(t, StringBody("hello")))
}

func TestBodySourceURLEncoded(t *testing.T) {
	v := url.Values{"a": {"1"}}
	testutil.AssertEqual(t, "a=1", readAll(t, URLEncodedBody(v)))
}

func TestBodySourceURLEncodedStruct(t *testing.T) {
	type form struct {
		Name string `url:"name"`
	}
	src, err := URLEncodedStructBody(form{Name: "roc"})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "name=roc", readAll(t, src))
}

func TestBodySourceBlob(t *testing.T) {
	b := &Blob{Data: []byte("abc"), ContentType: "text/plain"}
	testutil.AssertEqual(t, "abc", readAll(t, BlobBody(b)))
	testutil.AssertEqual(t, 3, b.Size())
}

func TestBodySourceBytes(t *testing.T) {
	testutil.AssertEqual(t, "xyz", readAll(t, BytesBody([]byte("xyz"))))
}

func TestBodySourceArrayBufferView(t *testing.T) {
	underlying := []byte("0123456789")
	src := ArrayBufferViewBody(underlying, 2, 4)
	testutil.AssertEqual(t, "2345", readAll(t, src))
}

func TestBodySourceReaderIsNotReplayable(t *testing.T) {
	src := ReaderBody(io.NopCloser(nil))
	if src.isReplayable() {
		t.Fatal("stream bodies must not report replayable")
	}
}

func TestBodySourceOther(t *testing.T) {
	testutil.AssertEqual(t, "42", readAll(t, OtherBody(42)))
}

func TestBodySourceReaderSurfacesSystemError(t *testing.T) {
	src := ReaderBody(&erroringReader{})
	r, _ := src.toReader("https://example.com/res")
	_, err := io.ReadAll(r)
	testutil.AssertErrorKind(t, err, KindSystem)
}

type erroringReader struct{}

func (e *erroringReader) Read(p []byte) (int, error) {
	return 0, io.ErrClosedPipe
}
