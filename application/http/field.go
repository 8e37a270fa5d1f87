package http

// Field is one raw header field as handed over by the transport.
type Field struct {
	Name  string
	Value string
}

// Headers is an insertion-ordered header field list. Name comparison
// is case-insensitive, duplicate names are preserved in input order,
// and [Headers.Get] returns the first match only. The list is not to
// be mutated after construction.
type Headers struct{ fields []Field }

// NewHeaders builds a header list from raw fields, canonicalizing
// their names.
func NewHeaders(fields []Field) Headers {
	clone := make([]Field, len(fields))
	for i, f := range fields {
		clone[i] = Field{Name: CanonicalName(f.Name), Value: f.Value}
	}

	return Headers{fields: clone}
}

// Get returns the value of the first field named name.
func (h *Headers) Get(name string) (value string, ok bool) {
	name = CanonicalName(name)
	for _, f := range h.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns the values of every field named name, in input order.
func (h *Headers) Values(name string) []string {
	name = CanonicalName(name)

	var values []string
	for _, f := range h.fields {
		if f.Name == name {
			values = append(values, f.Value)
		}
	}

	return values
}

func (h *Headers) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

func (h *Headers) Len() int { return len(h.fields) }

// Fields returns a copy of the underlying field list.
func (h *Headers) Fields() []Field {
	clone := make([]Field, len(h.fields))
	copy(clone, h.fields)
	return clone
}

// CanonicalName maps a field name to its canonical dash-capitalized
// form ("content-type" becomes "Content-Type").
func CanonicalName(s string) string {
	const capitalDiff = 'a' - 'A'

	b := []byte(s)
	upper := true
	for i, c := range b {
		switch {
		case upper && 'a' <= c && c <= 'z':
			c -= capitalDiff
		case !upper && 'A' <= c && c <= 'Z':
			c += capitalDiff
		}
		b[i] = c
		upper = c == '-'
	}

	return string(b)
}
