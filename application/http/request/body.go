package request

import (
	"io"

	"webstack/application/util/charset"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

const defaultBlockSize = 8192

// These are caller contract violations, not client input failures.
// They surface directly instead of degrading to a 400 signal.
var (
	// ErrBodyAccessConflict reports mixed streaming and buffered
	// access to the body source.
	ErrBodyAccessConflict = errors.New("body already opened with a different access strategy")

	// ErrBodyConsumed reports body access after the multipart decoder
	// consumed the source.
	ErrBodyConsumed = errors.New("body was consumed by the multipart decoder")

	// ErrTextBinaryConflict reports ForceText and ForceBinary set
	// together.
	ErrTextBinaryConflict = errors.New("ForceText and ForceBinary are mutually exclusive")
)

// bodyState tracks which materialization strategy claimed the body
// source. At most one may be used per request.
type bodyState uint8

const (
	bodyUnset bodyState = iota
	bodyStreaming
	bodyBuffered
	bodyMultipart
)

// BodyStream hands out the unconsumed body source, bounded to
// Content-Length minus alreadyRead octets when a length was declared
// and unbounded otherwise. The caller owns consuming exactly what it
// needs; afterwards the body can no longer be materialized through
// the buffered path.
func (r *Request) BodyStream(alreadyRead uint) (io.Reader, error) {
	switch r.bodyState {
	case bodyStreaming, bodyBuffered:
		return nil, ErrBodyAccessConflict
	case bodyMultipart:
		return nil, ErrBodyConsumed
	}

	r.bodyState = bodyStreaming

	if r.contentLength != nil {
		remain := uint(0)
		if *r.contentLength > alreadyRead {
			remain = *r.contentLength - alreadyRead
		}
		return &boundedReader{src: r.src, remain: remain}, nil
	}

	return r.src, nil
}

// fetchBody materializes the remaining body octets, honoring the
// declared framing. The result is cached: repeated calls return it
// without touching the source again.
func (r *Request) fetchBody(alreadyRead uint) ([]byte, error) {
	switch r.bodyState {
	case bodyStreaming:
		return nil, ErrBodyAccessConflict
	case bodyMultipart:
		return nil, ErrBodyConsumed
	case bodyBuffered:
		return r.rawBody, nil
	}

	body, err := r.readBody(alreadyRead)
	if err != nil {
		return nil, err
	}

	r.bodyState = bodyBuffered
	r.rawBody = body
	return body, nil
}

func (r *Request) readBody(alreadyRead uint) ([]byte, error) {
	switch {
	case r.contentLength != nil && *r.contentLength > alreadyRead:
		if r.chunked {
			// A body must not declare both framings.
			// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.1
			// The declared length wins.
			r.logger.Warn("both Content-Length and chunked framing signaled",
				"content-length", *r.contentLength)
		}

		want := *r.contentLength - alreadyRead
		buf := make([]byte, want)
		if _, err := io.ReadFull(r.src, buf); err != nil {
			return nil, errors.Wrapf(err, "reading %d declared body octets", want)
		}
		return buf, nil

	case r.chunked:
		return r.readUnsized()

	default:
		// No body.
		return nil, nil
	}
}

// readUnsized drains a body without a declared total length, reading
// fixed-size blocks until a short read signals the end.
func (r *Request) readUnsized() ([]byte, error) {
	body := make([]byte, 0, r.opts.BlockSize)
	block := make([]byte, r.opts.BlockSize)

	for {
		n, err := io.ReadFull(r.src, block)
		body = append(body, block[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return body, nil
			}
			return nil, errors.Wrap(err, "draining unsized body")
		}
	}
}

// BodyOptions control how [Request.RawBody] materializes the body.
type BodyOptions struct {
	// Encoding overrides the request encoding for text decoding.
	Encoding encoding.Encoding

	// ForceText decodes the body to text even for non-text media
	// types. ForceBinary keeps raw octets even for text media types.
	// Setting both is a contract violation.
	ForceText   bool
	ForceBinary bool
}

// Body is a materialized request body. Bytes is always set; Text only
// when a text interpretation was requested or inferable.
type Body struct {
	Bytes  []byte
	Text   string
	IsText bool
}

// RawBody materializes the remaining request body. Repeated calls
// reuse the cached octets. The result is binary unless text is forced
// or inferable from a text/* media type with a resolvable charset.
func (r *Request) RawBody(opts BodyOptions) (Body, error) {
	if opts.ForceText && opts.ForceBinary {
		return Body{}, ErrTextBinaryConflict
	}

	raw, err := r.fetchBody(0)
	if err != nil {
		return Body{}, err
	}

	if opts.ForceBinary {
		return Body{Bytes: raw}, nil
	}

	enc := opts.Encoding
	if enc == nil {
		enc = r.encoding
	}

	asText := opts.ForceText
	if !asText {
		ct, _ := r.Headers.Get("Content-Type")
		asText = charset.IsText(ct) && enc != nil
	}

	if !asText {
		return Body{Bytes: raw}, nil
	}

	if enc == nil {
		enc = charset.Default()
	}

	text, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return Body{}, errors.Wrap(err, "decoding body text")
	}

	return Body{Bytes: raw, Text: string(text), IsText: true}, nil
}

// boundedReader caps reads at the declared number of remaining body
// octets.
type boundedReader struct {
	src    io.Reader
	remain uint
}

func (b *boundedReader) Read(p []byte) (n int, err error) {
	if b.remain == 0 {
		return 0, io.EOF
	}
	if uint(len(p)) > b.remain {
		p = p[:b.remain]
	}

	n, err = b.src.Read(p)
	b.remain -= uint(n)
	return n, err
}
