// Package param implements the ordered key/value parameter lists used
// for query strings, url-encoded form bodies and cookies.
package param

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

// Pair is one decoded name/value parameter.
type Pair struct {
	Name  string
	Value string
}

// List preserves input order and duplicate names.
type List []Pair

// Lookup returns the value of the first pair named name.
func (l List) Lookup(name string) (value string, ok bool) {
	for _, p := range l {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Values returns the values of every pair named name, in input order.
func (l List) Values(name string) []string {
	var values []string
	for _, p := range l {
		if p.Name == name {
			values = append(values, p.Value)
		}
	}
	return values
}

var (
	// AmpSeparator splits query strings and url-encoded form bodies.
	AmpSeparator = regexp.MustCompile(`&`)

	// CookieSeparator splits Cookie header values on comma or
	// semicolon with optional surrounding whitespace.
	CookieSeparator = regexp.MustCompile(`\s*[,;]\s*`)
)

// Decode splits encoded on sep, splits each non-empty segment once on
// the first '=' (value empty if absent), and percent-decodes name and
// value. The decoded octets are transcoded through enc; a nil enc
// means they are already UTF-8. A nil sep defaults to [AmpSeparator].
func Decode(encoded string, sep *regexp.Regexp, enc encoding.Encoding) (List, error) {
	if sep == nil {
		sep = AmpSeparator
	}

	segments := sep.Split(encoded, -1)
	list := make(List, 0, len(segments))

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		rawName, rawValue, _ := strings.Cut(segment, "=")

		name, err := decodeComponent(rawName, enc)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding name %q", rawName)
		}

		value, err := decodeComponent(rawValue, enc)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding value of %q", name)
		}

		list = append(list, Pair{Name: name, Value: value})
	}

	return list, nil
}

func decodeComponent(s string, enc encoding.Encoding) (string, error) {
	raw, err := unescape(s)
	if err != nil {
		return "", err
	}

	if enc == nil {
		return raw, nil
	}

	decoded, err := enc.NewDecoder().Bytes([]byte(raw))
	if err != nil {
		return "", errors.Wrap(err, "transcoding octets")
	}

	return string(decoded), nil
}
