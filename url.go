package fetch

import (
	urlpkg "net/url"
	"strings"
)

// validateURL resolves input (a raw URL string or an already-parsed
// *url.URL) into an absolute http(s) URL.
func validateURL(input interface{}) (*urlpkg.URL, error) {
	switch v := input.(type) {
	case *urlpkg.URL:
		return checkAbsoluteHTTP(v)
	case urlpkg.URL:
		u := v
		return checkAbsoluteHTTP(&u)
	case string:
		if strings.HasPrefix(v, "//") {
			return nil, typeError("Only absolute URLs are supported")
		}
		u, err := urlpkg.Parse(v)
		if err != nil {
			return nil, typeError("Only absolute URLs are supported")
		}
		return checkAbsoluteHTTP(u)
	default:
		return nil, typeError("Only absolute URLs are supported")
	}
}

func checkAbsoluteHTTP(u *urlpkg.URL) (*urlpkg.URL, error) {
	if !u.IsAbs() || u.Host == "" {
		return nil, typeError("Only absolute URLs are supported")
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u, nil
	default:
		return nil, typeError("Only HTTP(S) protocols are supported")
	}
}
