package fetch

import (
	"fmt"
	"strconv"
)

const defaultUserAgent = "go-fetch/1 (https://github.com/relayfetch/fetch)"

// negotiateContentType infers the outgoing Content-Type from the body
// source shape. ok is false when no Content-Type should be set.
func negotiateContentType(source *BodySource) (value string, ok bool) {
	switch source.tag {
	case sourceString, sourceOther:
		return "text/plain;charset=UTF-8", true
	case sourceURLEncodedParams:
		return "application/x-www-form-urlencoded;charset=UTF-8", true
	case sourceBlob:
		if source.blob == nil || source.blob.ContentType == "" {
			return "", false
		}
		return source.blob.ContentType, true
	case sourceFormData:
		ct, _, err := source.form.encodeMultipart()
		if err != nil {
			return "", false
		}
		return ct, true
	default:
		return "", false
	}
}

// negotiateContentLength infers the outgoing Content-Length.
// ok is false when the length is unknown (streaming bodies, or a
// form-data source whose encoded size the form doesn't report).
func negotiateContentLength(source *BodySource) (length int64, ok bool) {
	switch source.tag {
	case sourceNull:
		return 0, true
	case sourceString:
		return int64(len(source.str)), true
	case sourceOther:
		return int64(len(fmt.Sprint(source.other))), true
	case sourceURLEncodedParams:
		return int64(len(source.values.Encode())), true
	case sourceBlob:
		if source.blob == nil {
			return 0, true
		}
		return int64(len(source.blob.Data)), true
	case sourceByteBuffer, sourceArrayBufferView:
		return int64(len(source.bytes)), true
	case sourceFormData:
		_, body, err := source.form.encodeMultipart()
		if err != nil {
			return 0, false
		}
		type lenReader interface{ Len() int }
		if lr, ok := body.(lenReader); ok {
			return int64(lr.Len()), true
		}
		return 0, false
	case sourceReader:
		return 0, false
	default:
		return 0, false
	}
}

// applyDefaultHeaders injects defaults the caller hasn't supplied: a
// default User-Agent, Accept: */*, and Accept-Encoding when compress
// is enabled, plus Content-Type/Content-Length/Transfer-Encoding
// inferred from the body source.
func applyDefaultHeaders(h *Headers, source *BodySource, compress bool) {
	if !h.Has("user-agent") {
		h.Set("User-Agent", defaultUserAgent)
	}
	if !h.Has("accept") {
		h.Set("Accept", "*/*")
	}
	if compress && !h.Has("accept-encoding") {
		h.Set("Accept-Encoding", "gzip,deflate,br,zstd")
	}

	if !h.Has("content-type") {
		if ct, ok := negotiateContentType(source); ok {
			h.Set("Content-Type", ct)
		}
	}

	if length, ok := negotiateContentLength(source); ok {
		h.Set("Content-Length", strconv.FormatInt(length, 10))
		h.Delete("transfer-encoding")
	} else if source.tag == sourceReader {
		h.Delete("content-length")
		h.Set("Transfer-Encoding", "chunked")
	}
}
