package decode

import (
	"compress/gzip"
	"io"
	"io/fs"
)

// gzipReader wraps a response body so it can lazily call
// gzip.NewReader on the first call to Read. Trailing bytes after the
// last gzip member are tolerated: some servers append garbage (or a
// second, truncated member) past the real stream, so Multistream is
// disabled and an EOF arriving mid-member is swallowed once the
// first member has been fully read.
type gzipReader struct {
	body io.ReadCloser
	zr   *gzip.Reader
	zerr error
	done bool
}

func newGzipReader(body io.ReadCloser) *gzipReader {
	return &gzipReader{body: body}
}

func (gz *gzipReader) Read(p []byte) (n int, err error) {
	if gz.zerr != nil {
		return 0, gz.zerr
	}
	if gz.zr == nil {
		gz.zr, err = gzip.NewReader(gz.body)
		if err != nil {
			gz.zerr = err
			return 0, err
		}
		gz.zr.Multistream(false)
	}
	n, err = gz.zr.Read(p)
	if err == io.EOF {
		gz.done = true
	}
	if err != nil && err != io.EOF && gz.done {
		err = io.EOF
	}
	return n, err
}

func (gz *gzipReader) Close() error {
	if err := gz.body.Close(); err != nil {
		return err
	}
	gz.zerr = fs.ErrClosed
	return nil
}
