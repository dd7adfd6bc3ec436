// Package fetch implements a client-side HTTP/1.1 and HTTP/2-over-TLS
// fetcher modeled on the WHATWG Fetch contract, adapted for a
// server-side Go runtime.
//
// A caller builds a Request (an absolute URL, method, headers and an
// optional body), dispatches it with Fetch or Do, and receives a
// Response whose Body is a single-use byte stream that can be
// consumed once as bytes, text, JSON, a Blob or a multipart form.
//
//	resp, err := fetch.Fetch("https://example.com/users",
//		fetch.WithMethod("POST"),
//		fetch.WithBody(fetch.StringBody(`{"name":"roc"}`)),
//	)
//	if err != nil {
//		return err
//	}
//	var user User
//	return resp.Body.JSON(context.Background(), &user)
package fetch
