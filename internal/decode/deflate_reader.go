package decode

import (
	"bufio"
	"compress/flate"
	"compress/zlib"
	"io"
)

// deflateReader lazily picks between zlib-wrapped and raw deflate on
// the first Read by sniffing the first byte: 0x78 is the zlib CMF
// byte for the deflate compression method with a standard window
// size, which never appears as the first byte of a raw deflate
// stream produced by a compliant encoder.
type deflateReader struct {
	body io.ReadCloser
	br   *bufio.Reader
	dr   io.ReadCloser
	derr error
}

func newDeflateReader(body io.ReadCloser) *deflateReader {
	return &deflateReader{body: body}
}

func (df *deflateReader) Read(p []byte) (n int, err error) {
	if df.derr != nil {
		return 0, df.derr
	}
	if df.dr == nil {
		df.br = bufio.NewReader(df.body)
		b, err := df.br.Peek(1)
		if err != nil && len(b) == 0 {
			df.derr = err
			return 0, err
		}
		if len(b) == 1 && b[0] == 0x78 {
			zr, err := zlib.NewReader(df.br)
			if err != nil {
				df.derr = err
				return 0, err
			}
			df.dr = zr
		} else {
			df.dr = flate.NewReader(df.br)
		}
	}
	return df.dr.Read(p)
}

func (df *deflateReader) Close() error {
	if df.dr != nil {
		df.dr.Close()
	}
	return df.body.Close()
}
