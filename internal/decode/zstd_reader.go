package decode

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdReader supplements the decoder table with zstd, for servers
// that answer Content-Encoding: zstd.
type zstdReader struct {
	body io.ReadCloser
	zr   *zstd.Decoder
	zerr error
}

func newZstdReader(body io.ReadCloser) *zstdReader {
	return &zstdReader{body: body}
}

func (zr *zstdReader) Read(p []byte) (n int, err error) {
	if zr.zerr != nil {
		return 0, zr.zerr
	}
	if zr.zr == nil {
		zr.zr, err = zstd.NewReader(zr.body)
		if err != nil {
			zr.zerr = err
			return 0, err
		}
	}
	return zr.zr.Read(p)
}

func (zr *zstdReader) Close() error {
	if zr.zr != nil {
		zr.zr.Close()
	}
	return zr.body.Close()
}
