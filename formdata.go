package fetch

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"
)

// FormData is the assembled field -> value(s) container produced by
// Body.FormData and consumed when building a multipart request body.
// A field may carry multiple values (repeated form fields); a file
// field's bytes are concatenated into a single string value keyed by
// its filename.
type FormData struct {
	order  []string
	values map[string][]string

	// boundary is fixed on the first multipart encoding so that the
	// negotiated Content-Type and the encoded body always agree, no
	// matter how many times each is derived from this form.
	boundary string
}

// NewFormData returns an empty FormData.
func NewFormData() *FormData {
	return &FormData{values: map[string][]string{}}
}

// Append adds a value for key, preserving prior values.
func (f *FormData) Append(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.order = append(f.order, key)
	}
	f.values[key] = append(f.values[key], value)
}

// Get returns the first value for key, if present.
func (f *FormData) Get(key string) (string, bool) {
	vs, ok := f.values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// GetAll returns all values for key.
func (f *FormData) GetAll(key string) []string {
	return append([]string(nil), f.values[key]...)
}

// Keys returns field names in first-insertion order.
func (f *FormData) Keys() []string {
	return append([]string(nil), f.order...)
}

// encodeMultipart renders the form as multipart/form-data, returning
// the boundary-qualified Content-Type and the encoded body.
func (f *FormData) encodeMultipart() (string, io.Reader, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if f.boundary == "" {
		f.boundary = w.Boundary()
	} else if err := w.SetBoundary(f.boundary); err != nil {
		return "", nil, systemError("failed to set multipart boundary", err)
	}
	for _, key := range f.order {
		for _, v := range f.values[key] {
			fw, err := w.CreateFormField(key)
			if err != nil {
				return "", nil, systemError("failed to encode multipart field", err)
			}
			if _, err := fw.Write([]byte(v)); err != nil {
				return "", nil, systemError("failed to encode multipart field", err)
			}
		}
	}
	if err := w.Close(); err != nil {
		return "", nil, systemError("failed to close multipart writer", err)
	}
	return "multipart/form-data; boundary=" + w.Boundary(), &buf, nil
}

// parseFormData decodes a request/response body as form data. The
// multipart parser (mime/multipart) and the urlencoded parser
// (net/url) are the out-of-scope "streaming form parser" collaborator
// this package leans on; it only orchestrates them.
func parseFormData(contentType string, body []byte) (*FormData, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, typeError("invalid content-type for formData(): " + err.Error())
	}
	switch {
	case mediaType == "multipart/form-data":
		boundary, ok := params["boundary"]
		if !ok {
			return nil, typeError("missing multipart boundary")
		}
		return parseMultipartFormData(boundary, body)
	case mediaType == "application/x-www-form-urlencoded":
		return parseURLEncodedFormData(body)
	default:
		return nil, typeError("content-type is not multipart/form-data or application/x-www-form-urlencoded")
	}
}

func parseMultipartFormData(boundary string, body []byte) (*FormData, error) {
	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	f := NewFormData()
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, systemError("failed to parse multipart form", err)
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, systemError("failed to read multipart part", err)
		}
		name := part.FormName()
		if filename := part.FileName(); filename != "" {
			// Files' bytes are concatenated into one string value
			// keyed by filename.
			f.Append(filename, string(data))
			continue
		}
		f.Append(name, string(data))
	}
	return f, nil
}

func parseURLEncodedFormData(body []byte) (*FormData, error) {
	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, typeError("failed to parse urlencoded form: " + err.Error())
	}
	f := NewFormData()
	for key, vs := range values {
		for _, v := range vs {
			f.Append(key, v)
		}
	}
	return f, nil
}
