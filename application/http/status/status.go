// Package status defines the numeric status signals the request
// decoding layer reports to the response collaborator.
package status

import "fmt"

type Status struct {
	Code         uint
	ReasonPhrase string
}

// The signals this layer emits. Parse failures degrade to BadRequest;
// a matching If-Modified-Since yields NotModified.
var (
	OK                  = Status{200, "OK"}
	NotModified         = Status{304, "Not Modified"}
	BadRequest          = Status{400, "Bad Request"}
	LengthRequired      = Status{411, "Length Required"}
	ContentTooLarge     = Status{413, "Content Too Large"}
	InternalServerError = Status{500, "Internal Server Error"}
)

// Error carries a terminal status decision up to the dispatch
// boundary without exposing the raw parse detail.
type Error struct {
	cause  error
	Status Status
}

func NewError(err error, status Status) Error {
	return Error{cause: err, Status: status}
}

func (e Error) Error() string {
	cause := ""
	if e.cause != nil {
		cause = e.cause.Error()
	}

	return fmt.Sprintf("%d %s: %q", e.Status.Code, e.Status.ReasonPhrase, cause)
}

func (e Error) Unwrap() error { return e.cause }
