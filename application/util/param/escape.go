package param

import (
	"strings"

	"github.com/pkg/errors"
)

// unescape reverses the %XX and '+' escaping of url-encoded text.
// The result is raw octets in whatever charset the sender used.
func unescape(s string) (string, error) {
	b := new(strings.Builder)
	b.Grow(len(s))

	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		switch c {
		case '+':
			b.WriteByte(' ')
		case '%':
			if idx+2 >= len(s) {
				return "", errors.Errorf("truncated percent escape: %q", s[idx:])
			}

			hi, ok1 := unhex(s[idx+1])
			lo, ok2 := unhex(s[idx+2])
			if !ok1 || !ok2 {
				return "", errors.Errorf("percent encoding not properly applied: %q", s[idx:idx+3])
			}

			b.WriteByte(hi<<4 | lo)
			idx += 2
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
