// Package decode adapts a response body's raw bytes to the consumer,
// content-encoding decompression and, for text bodies whose
// declared charset isn't UTF-8, transcoding to UTF-8.
package decode

import "io"

// NewContentDecoder wraps body with the decompressor matching
// contentEncoding, or returns body unchanged if the encoding is
// empty, "identity", or not one this package supports.
func NewContentDecoder(body io.ReadCloser, contentEncoding string) io.ReadCloser {
	switch contentEncoding {
	case "gzip":
		return newGzipReader(body)
	case "deflate":
		return newDeflateReader(body)
	case "br":
		return newBrotliReader(body)
	case "zstd":
		return newZstdReader(body)
	default:
		return body
	}
}

// Supported reports whether contentEncoding names a decoder this
// package knows how to apply.
func Supported(contentEncoding string) bool {
	switch contentEncoding {
	case "gzip", "deflate", "br", "zstd":
		return true
	default:
		return false
	}
}
