package request

import (
	"encoding/base64"
	"strings"
	"time"

	"webstack/application/http/status"
)

func (r *Request) Host() string {
	v, _ := r.Headers.Get("Host")
	return v
}

func (r *Request) UserAgent() string {
	v, _ := r.Headers.Get("User-Agent")
	return v
}

func (r *Request) Referer() string {
	v, _ := r.Headers.Get("Referer")
	return v
}

// ForwardedFor is the raw X-Forwarded-For value, as set by an
// upstream proxy.
func (r *Request) ForwardedFor() string {
	v, _ := r.Headers.Get("X-Forwarded-For")
	return v
}

// BasicAuth extracts the credentials of an "Authorization: Basic"
// header. It performs no verification beyond decoding.
func (r *Request) BasicAuth() (user, pass string, ok bool) {
	v, found := r.Headers.Get("Authorization")
	if !found {
		return "", "", false
	}

	const prefix = "Basic "
	if len(v) < len(prefix) || !strings.EqualFold(v[:len(prefix)], prefix) {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(v[len(prefix):]))
	if err != nil {
		return "", "", false
	}

	user, pass, found = strings.Cut(string(decoded), ":")
	if !found {
		return "", "", false
	}

	return user, pass, true
}

// imfFixDate is the preferred HTTP date format.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.7
const imfFixDate = "Mon, 02 Jan 2006 15:04:05 GMT"

// CheckNotModified compares the If-Modified-Since header against the
// formatted modification time of the resource. An exact match records
// a 304 signal and reports true.
func (r *Request) CheckNotModified(modTime time.Time) bool {
	ims, ok := r.Headers.Get("If-Modified-Since")
	if !ok {
		return false
	}

	if ims != modTime.UTC().Format(imfFixDate) {
		return false
	}

	r.SetStatus(status.NotModified)
	return true
}
