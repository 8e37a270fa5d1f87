package request

import (
	"mime"
	"strings"

	"webstack/application/http/status"
	"webstack/application/util/param"

	"github.com/pkg/errors"
)

// postState tracks the lazy body parameter decoding.
type postState uint8

const (
	postUnread postState = iota
	postReading
	postDecoded
	postFailed
)

// PostParam is one entry of the decoded body parameter list. File is
// non-nil for multipart file uploads; Value carries the text content
// otherwise.
type PostParam struct {
	Name  string
	Value string
	File  *UploadedFile
}

// UploadedFile describes a file part spilled to temporary storage.
type UploadedFile struct {
	Path        string
	Filename    string
	ContentType string
}

// PostParams returns the decoded body parameters, decoding them on
// first use.
func (r *Request) PostParams() []PostParam {
	return r.DecodePostParams(false)
}

// PostParamValue looks up the first body parameter named name.
func (r *Request) PostParamValue(name string) (string, bool) {
	for _, p := range r.PostParams() {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// DecodePostParams drives the body parameter state machine. Without
// force a previous outcome, decoded or failed, is returned as is;
// force re-enters decoding, e.g. after switching encodings
// mid-request. Decoding failures degrade to an empty list and a 400
// signal, never an error.
func (r *Request) DecodePostParams(force bool) []PostParam {
	if !force && r.postState != postUnread {
		return r.postParams
	}

	ct, ok := r.Headers.Get("Content-Type")
	if !ok || !r.paramMethod() {
		return r.postParams
	}

	if r.contentLength == nil && !r.chunked {
		// An unbounded, unframed body cannot be consumed safely.
		r.logger.Warn("body has neither declared length nor framing, leaving parameters undecoded",
			"method", r.Method)
		return r.postParams
	}

	r.postState = postReading

	params, err := r.decodeBodyParams(ct)
	if err != nil {
		statusErr := status.NewError(err, status.BadRequest)
		r.logger.Error("decoding body parameters", "error", statusErr.Error())
		r.SetStatus(statusErr.Status)
		r.postState = postFailed
		r.postParams = nil
		return nil
	}

	r.postState = postDecoded
	r.postParams = params
	return params
}

func (r *Request) paramMethod() bool {
	for _, m := range r.opts.ParamMethods {
		if strings.EqualFold(m, r.Method) {
			return true
		}
	}
	return false
}

func (r *Request) decodeBodyParams(contentType string) ([]PostParam, error) {
	mediatype, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, errors.Wrap(err, "parsing content type")
	}

	switch mediatype {
	case "application/x-www-form-urlencoded":
		return r.decodeForm()
	case "multipart/form-data":
		return r.decodeMultipart(params["boundary"])
	default:
		// Not a form. The body stays available for raw access.
		return nil, nil
	}
}

// decodeForm decodes an url-encoded body. The octets come from the
// buffered body cache, so a forced redecode after switching encodings
// performs no second read.
func (r *Request) decodeForm() ([]PostParam, error) {
	raw, err := r.fetchBody(0)
	if err != nil {
		return nil, errors.Wrap(err, "fetching form body")
	}

	list, err := param.Decode(string(raw), param.AmpSeparator, r.encoding)
	if err != nil {
		return nil, errors.Wrap(err, "decoding url-encoded form")
	}

	entries := make([]PostParam, 0, len(list))
	for _, p := range list {
		entries = append(entries, PostParam{Name: p.Name, Value: p.Value})
	}

	return entries, nil
}
