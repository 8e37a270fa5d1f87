package request

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"webstack/application/http"
	"webstack/application/http/session"
	"webstack/application/http/status"
	"webstack/application/util/charset"
	"webstack/application/util/param"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

// Incoming carries the raw material of one inbound request, as handed
// over by the transport collaborator. Body is the unconsumed byte
// source; the request record takes exclusive ownership of it.
type Incoming struct {
	Method     string
	URI        string
	Proto      string
	RemoteAddr string
	RemotePort uint16

	Fields []http.Field
	Body   io.Reader
}

type Options struct {
	// ParamMethods are the methods whose bodies may carry parameters.
	// Defaults to POST only.
	ParamMethods []string

	// Sessions resolves the session a request belongs to. A nil
	// verifier attaches no session.
	Sessions session.Verifier

	// BlockSize is the read size used when draining bodies without a
	// declared length. Defaults to 8192.
	BlockSize uint
}

// Request is the structured, queryable form of one inbound request.
// It has a single owner for its whole lifetime: the worker handling
// the request. None of its caches are guarded.
type Request struct {
	Method     string
	URI        string
	Proto      string
	RemoteAddr string
	RemotePort uint16

	Headers http.Headers

	// ScriptName and QueryString are the two halves of the URI,
	// split on its first '?'.
	ScriptName  string
	QueryString string

	Cookies   param.List
	GetParams param.List

	Session *session.Session

	// Aux is the per-request scratch store, freely mutated by
	// handler code.
	Aux AuxStore

	logger *slog.Logger
	opts   Options

	// encoding is the resolved request text encoding. nil means no
	// charset was declared; the process default applies where text
	// is actually produced.
	encoding encoding.Encoding

	src           io.Reader
	contentLength *uint
	chunked       bool

	bodyState bodyState
	rawBody   []byte

	postState  postState
	postParams []PostParam

	status *status.Status
	halted bool
}

// New builds a request record from raw inbound material. It never
// fails: any error while resolving framing or decoding the query
// string or cookies is logged and converted into a 400 status signal
// on the returned record, with the fields decoded so far left in
// place.
func New(in Incoming, logger *slog.Logger, opts Options) *Request {
	if opts.BlockSize == 0 {
		opts.BlockSize = defaultBlockSize
	}
	if len(opts.ParamMethods) == 0 {
		opts.ParamMethods = []string{"POST"}
	}

	r := &Request{
		Method:     in.Method,
		URI:        in.URI,
		Proto:      in.Proto,
		RemoteAddr: in.RemoteAddr,
		RemotePort: in.RemotePort,
		Headers:    http.NewHeaders(in.Fields),
		logger:     logger,
		opts:       opts,
		src:        in.Body,
	}

	r.ScriptName, r.QueryString = splitURI(in.URI)

	if err := r.resolveFraming(); err != nil {
		r.fail("resolving body framing", err)
	}

	r.resolveEncoding()

	if err := r.decodeQuery(); err != nil {
		r.fail("decoding query string", err)
	}

	if err := r.decodeCookies(); err != nil {
		r.fail("decoding cookies", err)
	}

	if opts.Sessions != nil {
		r.Session = opts.Sessions.VerifyOrCreate(r.Cookies, in.RemoteAddr)
	}

	return r
}

// fail converts an error at the construction boundary into the
// terminal 400 decision. Construction carries on with whatever has
// been decoded so far.
func (r *Request) fail(msg string, err error) {
	statusErr := status.NewError(err, status.BadRequest)
	r.logger.Error(msg, "error", statusErr.Error())
	r.SetStatus(statusErr.Status)
	r.halted = true
}

// splitURI separates the script name from the query string. Clients
// occasionally send absolute-form targets ("GET http://host/path"),
// so a leading scheme://authority prefix is stripped, leaving a
// path-only script name.
func splitURI(uri string) (scriptName, queryString string) {
	scriptName = uri
	if idx := strings.IndexByte(uri, '?'); idx >= 0 {
		scriptName, queryString = uri[:idx], uri[idx+1:]
	}

	if idx := strings.Index(scriptName, "://"); idx > 0 && isScheme(scriptName[:idx]) {
		rest := scriptName[idx+len("://"):]
		if slash := strings.IndexByte(rest, '/'); slash >= 0 {
			scriptName = rest[slash:]
		} else {
			scriptName = "/"
		}
	}

	return scriptName, queryString
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.1
func isScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return len(s) > 0
}

func (r *Request) resolveFraming() error {
	if v, ok := r.Headers.Get("Content-Length"); ok {
		len64, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.Wrap(err, "parsing Content-Length")
		}

		l := uint(len64)
		r.contentLength = &l
	}

	var codings []string
	for _, v := range r.Headers.Values("Transfer-Encoding") {
		for _, coding := range strings.Split(v, ",") {
			if coding = strings.TrimSpace(coding); coding != "" {
				codings = append(codings, coding)
			}
		}
	}
	if len(codings) > 0 {
		// Chunked must be the last applied coding.
		// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.1
		last := codings[len(codings)-1]
		r.chunked = strings.EqualFold(last, "chunked")
	}

	return nil
}

// resolveEncoding picks the request text encoding from the
// Content-Type charset parameter. An unsupported charset warns and
// falls back to the process default.
func (r *Request) resolveEncoding() {
	ct, ok := r.Headers.Get("Content-Type")
	if !ok {
		return
	}

	enc, err := charset.Resolve(ct)
	if err != nil {
		r.logger.Warn("unsupported charset, falling back to default",
			"content-type", ct, "error", err.Error())
		r.encoding = charset.Default()
		return
	}

	r.encoding = enc
}

// SetEncoding overrides the resolved request encoding. Callers that
// switch encodings after body parameters were decoded should force a
// redecode via [Request.DecodePostParams].
func (r *Request) SetEncoding(enc encoding.Encoding) { r.encoding = enc }

// Encoding is the request text encoding in effect.
func (r *Request) Encoding() encoding.Encoding {
	if r.encoding == nil {
		return charset.Default()
	}
	return r.encoding
}

func (r *Request) decodeQuery() error {
	r.GetParams = param.List{}
	if r.QueryString == "" {
		return nil
	}

	list, err := param.Decode(r.QueryString, param.AmpSeparator, r.encoding)
	if err != nil {
		return errors.Wrap(err, "decoding query string")
	}

	r.GetParams = list
	return nil
}

// decodeCookies decodes the Cookie header with a fixed UTF-8
// interpretation, regardless of the request encoding.
func (r *Request) decodeCookies() error {
	r.Cookies = param.List{}

	raw, ok := r.Headers.Get("Cookie")
	if !ok {
		return nil
	}

	list, err := param.Decode(raw, param.CookieSeparator, nil)
	if err != nil {
		return errors.Wrap(err, "decoding Cookie header")
	}

	r.Cookies = list
	return nil
}

// SetStatus records the status signal for the response collaborator.
func (r *Request) SetStatus(s status.Status) { r.status = &s }

// Status reports the recorded status signal, if any.
func (r *Request) Status() (status.Status, bool) {
	if r.status == nil {
		return status.Status{}, false
	}
	return *r.status, true
}

// Halt records the stop-processing signal. It is returned up the call
// chain to the dispatch boundary instead of aborting the connection.
func (r *Request) Halt() { r.halted = true }

func (r *Request) Halted() bool { return r.halted }

// Header returns the first value of the named header field.
func (r *Request) Header(name string) (string, bool) { return r.Headers.Get(name) }

// GetParam looks up the first query parameter named name.
func (r *Request) GetParam(name string) (string, bool) { return r.GetParams.Lookup(name) }

// Cookie looks up the first cookie named name.
func (r *Request) Cookie(name string) (string, bool) { return r.Cookies.Lookup(name) }

// Param looks up name among the query parameters first, falling back
// to the body parameters. The query side wins on name collision.
func (r *Request) Param(name string) (string, bool) {
	if v, ok := r.GetParams.Lookup(name); ok {
		return v, true
	}
	return r.PostParamValue(name)
}
