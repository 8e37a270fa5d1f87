// Package charset resolves Content-Type charset parameters into text
// encodings.
package charset

import (
	"mime"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Default is the process-wide fallback encoding.
func Default() encoding.Encoding { return unicode.UTF8 }

// Resolve maps a Content-Type header value to the encoding named by
// its charset parameter. A missing header or charset parameter yields
// (nil, nil). An unknown charset label is an error, so the caller can
// warn and fall back to [Default].
func Resolve(contentType string) (encoding.Encoding, error) {
	if contentType == "" {
		return nil, nil
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, errors.Wrap(err, "parsing media type")
	}

	label, ok := params["charset"]
	if !ok {
		return nil, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, errors.Wrapf(err, "unsupported charset %q", label)
	}

	return enc, nil
}

// IsText reports whether the media type has a textual main type.
func IsText(contentType string) bool {
	mediatype, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediatype, "text/")
}
