package odata

import (
	"errors"
	"fmt"
)

var (
	ErrNotAnInteger          = errors.New("not an integer")
	ErrNegativeValue         = errors.New("negative value")
	ErrInvalidDirection      = errors.New("invalid direction")
	ErrMalformedOrderBy      = errors.New("malformed orderby item")
	ErrMalformedFilterClause = errors.New("malformed filter clause")
	ErrInvalidQueryString    = errors.New("invalid query string")
	ErrInvalidURL            = errors.New("url should be a valid url")
)

// DecodeError carries the logical parameter name ("top", "filter", ...) and
// the offending text alongside one of the sentinel errors above.
type DecodeError struct {
	Parameter string
	Value     string
	Err       error
}

func (err *DecodeError) Error() string {
	switch {
	case errors.Is(err.Err, ErrNotAnInteger):
		return fmt.Sprintf("%s should be an integer", err.Parameter)
	case errors.Is(err.Err, ErrNegativeValue):
		return fmt.Sprintf("%s should be greater or equal to zero", err.Parameter)
	case errors.Is(err.Err, ErrInvalidDirection):
		return fmt.Sprintf("direction should be either asc or desc, got %q", err.Value)
	case err.Parameter == "":
		return fmt.Sprintf("%s: %q", err.Err, err.Value)
	}

	return fmt.Sprintf("%s: %s: %q", err.Parameter, err.Err, err.Value)
}

func (err *DecodeError) Unwrap() error {
	return err.Err
}
