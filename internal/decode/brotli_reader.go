package decode

import (
	"io"

	"github.com/andybalholm/brotli"
)

// brotliReader supplements the gzip/deflate decoders with brotli.
type brotliReader struct {
	body io.ReadCloser
	br   io.Reader
	berr error
}

func newBrotliReader(body io.ReadCloser) *brotliReader {
	return &brotliReader{body: body}
}

func (br *brotliReader) Read(p []byte) (n int, err error) {
	if br.berr != nil {
		return 0, br.berr
	}
	if br.br == nil {
		br.br = brotli.NewReader(br.body)
	}
	n, err = br.br.Read(p)
	if err != nil {
		br.berr = err
	}
	return n, err
}

func (br *brotliReader) Close() error {
	return br.body.Close()
}
