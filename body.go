package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/relayfetch/fetch/internal/decode"
)

// Body is the single-use byte-stream consumption protocol.
// It owns a BodySource; exactly one accessor call is permitted over
// its lifetime, after which it is "disturbed" and every further
// accessor or Clone call fails.
type Body struct {
	mu          sync.Mutex
	source      *BodySource
	disturbed   bool
	sizeCap     int64 // 0 means unbounded
	timeout     time.Duration
	ownerURL    string
	contentType string
	log         Logger
}

// newBody constructs a Body wrapping source. sizeCap of 0 means
// unbounded; timeout of 0 disables the body-timeout alarm.
func newBody(source *BodySource, sizeCap int64, timeout time.Duration, ownerURL, contentType string, log Logger) *Body {
	if source == nil {
		source = NullBody()
	}
	if log == nil {
		log = defaultLogger
	}
	return &Body{source: source, sizeCap: sizeCap, timeout: timeout, ownerURL: ownerURL, contentType: contentType, log: log}
}

// Used reports whether the body has already been consumed.
func (b *Body) Used() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disturbed
}

// consume marks the body disturbed and returns its fully buffered bytes.
func (b *Body) consume(ctx context.Context) ([]byte, error) {
	b.mu.Lock()
	if b.disturbed {
		b.mu.Unlock()
		return nil, typeError("body used already")
	}
	b.disturbed = true
	source := b.source
	b.mu.Unlock()

	reader, err := source.toReader(b.ownerURL)
	if err != nil {
		return nil, err
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := b.readAllCapped(reader)
		closeBodyReader(reader)
		done <- result{data, err}
	}()

	if b.timeout > 0 {
		timer := time.NewTimer(b.timeout)
		defer timer.Stop()
		select {
		case r := <-done:
			return r.data, r.err
		case <-timer.C:
			b.log.Warnf("body timeout fired after %s reading %s", b.timeout, b.ownerURL)
			closeBodyReader(reader)
			return nil, newError(KindBodyTimeout, "body timeout", nil)
		case <-ctx.Done():
			closeBodyReader(reader)
			return nil, systemError("body read canceled", ctx.Err())
		}
	}

	select {
	case r := <-done:
		return r.data, r.err
	case <-ctx.Done():
		closeBodyReader(reader)
		return nil, systemError("body read canceled", ctx.Err())
	}
}

// discard marks the body consumed and releases its underlying stream
// without reading it, for responses dropped on the floor such as a
// redirect hop's 3xx body.
func (b *Body) discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disturbed {
		return
	}
	b.disturbed = true
	if b.source.tag == sourceReader {
		closeBodyReader(b.source.reader)
	}
}

// closeBodyReader releases the stream behind a conversion-chain reader.
// Stream sources hand back closers holding real resources (a pooled
// HTTP connection, a decompressor); materialized sources adapt to
// plain readers with nothing to release. Closing is what unblocks a
// pending Read abandoned by the timeout path.
func closeBodyReader(r io.Reader) {
	if c, ok := r.(io.Closer); ok {
		c.Close()
	}
}

func (b *Body) readAllCapped(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, 32*1024)
	var total int64
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			total += int64(n)
			if b.sizeCap > 0 && total > b.sizeCap {
				return nil, newError(KindMaxSize, "content size at max-size", nil)
			}
			if _, werr := buf.Write(chunk[:n]); werr != nil {
				return nil, systemError("failed to buffer body", werr)
			}
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			if fe, ok := err.(*FetchError); ok {
				return nil, fe
			}
			return nil, systemError("failed to read body", err)
		}
	}
}

// Bytes returns the body as raw bytes (the "buffer" accessor).
func (b *Body) Bytes(ctx context.Context) ([]byte, error) {
	return b.consume(ctx)
}

// ArrayBuffer returns the body as an owned contiguous buffer.
func (b *Body) ArrayBuffer(ctx context.Context) ([]byte, error) {
	return b.consume(ctx)
}

// Text decodes the body as UTF-8 text. When the Content-Type is textual,
// the body is first transcoded if it declares a non-UTF-8 charset
// through a BOM or an HTML meta element; a charset parameter on the
// Content-Type itself is not consulted.
func (b *Body) Text(ctx context.Context) (string, error) {
	data, err := b.consume(ctx)
	if err != nil {
		return "", err
	}
	if decode.ResponseBodyIsText(b.contentType) {
		data = decode.TranscodeToUTF8(data)
	}
	return string(data), nil
}

// JSON decodes the body and unmarshals it into v, transcoding it first
// the same way Text does (body-declared charset only). An empty body
// fails with KindInvalidJSON, deliberately asymmetric with Text,
// which resolves to "".
func (b *Body) JSON(ctx context.Context, v interface{}) error {
	data, err := b.consume(ctx)
	if err != nil {
		return err
	}
	if decode.ResponseBodyIsText(b.contentType) {
		data = decode.TranscodeToUTF8(data)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return newError(KindInvalidJSON, "unexpected end of JSON input", nil)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return newError(KindInvalidJSON, "invalid json response body", err)
	}
	return nil
}

// Blob wraps the body's bytes with its owning Content-Type as a MIME type.
func (b *Body) Blob(ctx context.Context) (*Blob, error) {
	data, err := b.consume(ctx)
	if err != nil {
		return nil, err
	}
	return &Blob{Data: data, ContentType: lowerOrEmpty(b.contentType)}, nil
}

// FormData requires Content-Type to be multipart/form-data or
// application/x-www-form-urlencoded and parses the body accordingly.
func (b *Body) FormData(ctx context.Context) (*FormData, error) {
	data, err := b.consume(ctx)
	if err != nil {
		return nil, err
	}
	return parseFormData(b.contentType, data)
}

// Clone splits the body by tee: a materialized source is shared by
// reference (each accessor derives a fresh stream from it, so
// consuming one copy never disturbs the other); a stream source is
// teed so the slower reader's chunks are buffered until it catches
// up. form-data bodies are a documented exception: both
// copies alias the same *FormData object rather than being teed or
// copied; see the open-question decisions in DESIGN.md.
func (b *Body) Clone() (*Body, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disturbed {
		return nil, typeError("cannot clone body after it is used")
	}

	if b.source.tag == sourceReader {
		original, err := b.source.toReader(b.ownerURL)
		if err != nil {
			return nil, err
		}
		bc := newTeeBroadcast(original)
		b.source = ReaderBody(bc.branchA())
		clone := newBody(ReaderBody(bc.branchB()), b.sizeCap, b.timeout, b.ownerURL, b.contentType, b.log)
		return clone, nil
	}

	// Materialized sources (including form-data, which is aliased) are
	// shared by reference: cloning is free.
	clone := newBody(b.source, b.sizeCap, b.timeout, b.ownerURL, b.contentType, b.log)
	return clone, nil
}

func lowerOrEmpty(s string) string {
	if s == "" {
		return ""
	}
	return toLowerASCII(s)
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}
