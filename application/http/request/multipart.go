package request

import (
	"io"
	"mime/multipart"
	"os"

	"github.com/pkg/errors"
)

// decodeMultipart adapts the MIME multipart parser. A missing
// boundary parameter is a no-op, not an error. Parser failures are
// logged and degrade to an empty parameter list. Either way the
// source counts as consumed afterwards.
func (r *Request) decodeMultipart(boundary string) ([]PostParam, error) {
	if boundary == "" {
		return nil, nil
	}

	stream, err := r.BodyStream(0)
	if err != nil {
		// Precondition violation on the body source, not a parse
		// failure. Let the state machine surface it.
		return nil, err
	}

	params, err := readParts(multipart.NewReader(stream, boundary))
	if err != nil {
		r.logger.Error("multipart decoding failed", "error", err.Error())
		params = nil
	}

	r.bodyState = bodyMultipart

	r.reportLeftover(stream)

	return params, nil
}

// reportLeftover drains stray octets past the terminal boundary and
// logs their count. Advisory only.
func (r *Request) reportLeftover(stream io.Reader) {
	n, err := io.Copy(io.Discard, stream)
	if err != nil || n == 0 {
		return
	}

	r.logger.Info("stray bytes after terminal multipart boundary", "count", n)
}

func readParts(mr *multipart.Reader) ([]PostParam, error) {
	var params []PostParam

	for {
		part, err := mr.NextPart()
		// A wrapped EOF means the body ended mid-parse, so the
		// comparison must be exact.
		if err == io.EOF {
			return params, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading next part")
		}

		// Parts without a disposition name produce no entry.
		name := part.FormName()
		if name == "" {
			continue
		}

		if part.FileName() != "" {
			file, err := spillPart(part)
			if err != nil {
				return nil, errors.Wrapf(err, "storing file part %q", name)
			}
			params = append(params, PostParam{Name: name, File: file})
			continue
		}

		value, err := io.ReadAll(part)
		if err != nil {
			return nil, errors.Wrapf(err, "reading content of part %q", name)
		}
		params = append(params, PostParam{Name: name, Value: string(value)})
	}
}

// spillPart copies a file upload into temporary storage and returns
// its descriptor triple.
func spillPart(part *multipart.Part) (*UploadedFile, error) {
	tmp, err := os.CreateTemp("", "upload-*")
	if err != nil {
		return nil, errors.Wrap(err, "creating temp file")
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, part); err != nil {
		os.Remove(tmp.Name())
		return nil, errors.Wrap(err, "copying part content")
	}

	return &UploadedFile{
		Path:        tmp.Name(),
		Filename:    part.FileName(),
		ContentType: part.Header.Get("Content-Type"),
	}, nil
}
