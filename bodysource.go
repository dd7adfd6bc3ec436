package fetch

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
)

// sourceTag identifies which shape a BodySource wraps.
type sourceTag int

const (
	sourceNull sourceTag = iota
	sourceString
	sourceURLEncodedParams
	sourceBlob
	sourceByteBuffer
	sourceArrayBufferView
	sourceFormData
	sourceReader
	sourceOther
)

// Blob pairs raw bytes with a MIME type, mirroring the Fetch Blob shape.
type Blob struct {
	Data        []byte
	ContentType string
}

func (b *Blob) Size() int { return len(b.Data) }

// BodySource is a tagged variant over body shapes: a request or
// response body before it has been materialized into a byte stream.
// Exactly one of its fields is meaningful, selected by tag.
type BodySource struct {
	tag    sourceTag
	str    string
	values url.Values
	blob   *Blob
	bytes  []byte
	form   *FormData
	reader io.Reader
	other  interface{}

	// replayable is false for stream sources (sourceReader), which
	// cannot be materialized a second time without prior buffering.
	replayable bool
}

// NullBody returns the absent-body source. GET/HEAD requests must use it.
func NullBody() *BodySource {
	return &BodySource{tag: sourceNull, replayable: true}
}

// StringBody wraps a UTF-8 string body.
func StringBody(s string) *BodySource {
	return &BodySource{tag: sourceString, str: s, replayable: true}
}

// URLEncodedBody wraps an application/x-www-form-urlencoded body.
func URLEncodedBody(values url.Values) *BodySource {
	return &BodySource{tag: sourceURLEncodedParams, values: values, replayable: true}
}

// URLEncodedStructBody encodes v (a struct tagged with `url:"..."`,
// per google/go-querystring) into an x-www-form-urlencoded body.
func URLEncodedStructBody(v interface{}) (*BodySource, error) {
	values, err := query.Values(v)
	if err != nil {
		return nil, typeError("cannot encode body: " + err.Error())
	}
	return URLEncodedBody(values), nil
}

// BlobBody wraps a Blob.
func BlobBody(b *Blob) *BodySource {
	return &BodySource{tag: sourceBlob, blob: b, replayable: true}
}

// BytesBody wraps an owned byte buffer (the "byte-buffer" source tag).
func BytesBody(b []byte) *BodySource {
	return &BodySource{tag: sourceByteBuffer, bytes: b, replayable: true}
}

// ArrayBufferViewBody wraps a sub-slice of an underlying buffer,
// honoring offset and length the way a typed-array view does.
func ArrayBufferViewBody(underlying []byte, offset, length int) *BodySource {
	view := underlying[offset : offset+length]
	return &BodySource{tag: sourceArrayBufferView, bytes: view, replayable: true}
}

// FormDataBody wraps a multipart form body.
func FormDataBody(f *FormData) *BodySource {
	return &BodySource{tag: sourceFormData, form: f, replayable: true}
}

// ReaderBody wraps a streaming body of unknown length. It is not
// replayable: once read, it cannot be replayed for a redirect retry
// or cloned without buffering.
func ReaderBody(r io.Reader) *BodySource {
	return &BodySource{tag: sourceReader, reader: r, replayable: false}
}

// OtherBody wraps an arbitrary value, stringified via fmt.Sprint.
func OtherBody(v interface{}) *BodySource {
	return &BodySource{tag: sourceOther, other: v, replayable: true}
}

func (s *BodySource) isNull() bool {
	return s == nil || s.tag == sourceNull
}

func (s *BodySource) isReplayable() bool {
	return s == nil || s.replayable
}

// toReader converts the source into a byte stream. Materialized
// sources are adapted on every call, which is what makes
// clone-by-reference sound; stream sources can only be adapted once.
func (s *BodySource) toReader(streamURL string) (io.Reader, error) {
	switch s.tag {
	case sourceNull:
		return strings.NewReader(""), nil
	case sourceString:
		return strings.NewReader(s.str), nil
	case sourceURLEncodedParams:
		return strings.NewReader(s.values.Encode()), nil
	case sourceBlob:
		if s.blob == nil {
			return strings.NewReader(""), nil
		}
		return strings.NewReader(string(s.blob.Data)), nil
	case sourceByteBuffer, sourceArrayBufferView:
		return byteSliceReader(s.bytes), nil
	case sourceFormData:
		_, body, err := s.form.encodeMultipart()
		if err != nil {
			return nil, err
		}
		return body, nil
	case sourceReader:
		return &nodeStreamAdapter{src: s.reader, url: streamURL}, nil
	case sourceOther:
		return strings.NewReader(fmt.Sprint(s.other)), nil
	default:
		return strings.NewReader(""), nil
	}
}

func byteSliceReader(b []byte) io.Reader {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &byteReader{data: cp}
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// nodeStreamAdapter adapts a caller-supplied io.Reader (standing in
// for both the Node readable-stream and WHATWG readable-stream source
// shapes. Go only has the one reader interface, so both
// collapse to this single adapter) and surfaces read errors as the
// system kind, naming the URL whose body stream failed.
type nodeStreamAdapter struct {
	src io.Reader
	url string
}

func (a *nodeStreamAdapter) Read(p []byte) (int, error) {
	n, err := a.src.Read(p)
	if err != nil && err != io.EOF {
		return n, systemError(fmt.Sprintf("Invalid response body while trying to fetch %s", a.url), err)
	}
	return n, err
}

// Close releases the wrapped stream when it owns releasable resources,
// such as an HTTP response body holding a pooled connection.
func (a *nodeStreamAdapter) Close() error {
	if c, ok := a.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
