package odatahttp

import (
	"errors"
	"net/http"

	"github.com/lunagic/odata/odata"
	"github.com/lunagic/odata/odataservices/database"
	"github.com/lunagic/poseidon/poseidon"
)

const (
	CodeBadRequest          = "BadRequest"
	CodeInternalServerError = "InternalServerError"
)

// ErrorResponse is the OData JSON error body.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Target  string `json:"target,omitempty"`
	Message string `json:"message"`
}

// StatusFor maps an error to the status code RespondError answers with.
func StatusFor(err error) int {
	var decodeError *odata.DecodeError
	switch {
	case errors.As(err, &decodeError),
		errors.Is(err, odata.ErrInvalidQueryString),
		errors.Is(err, database.ErrUnknownColumn),
		errors.Is(err, database.ErrInvalidColumn):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err as an OData error body. Details of server side
// errors are not exposed.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		poseidon.RespondJSON(w, status, ErrorResponse{
			Error: ErrorDetail{
				Code:    CodeInternalServerError,
				Message: "something went wrong",
			},
		})
		return
	}

	detail := ErrorDetail{
		Code:    CodeBadRequest,
		Message: err.Error(),
	}

	var decodeError *odata.DecodeError
	if errors.As(err, &decodeError) {
		detail.Target = decodeError.Parameter
	}

	poseidon.RespondJSON(w, status, ErrorResponse{Error: detail})
}
