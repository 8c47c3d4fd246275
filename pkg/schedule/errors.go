package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDataset is the root of every load-time failure.
	ErrMalformedDataset = errors.New("malformed dataset")

	// ErrNoDays means the dataset has nothing to render.
	ErrNoDays = fmt.Errorf("%w: no days", ErrMalformedDataset)

	// ErrMalformedTime is returned for clock strings that are not H:MM or HH:MM.
	ErrMalformedTime = fmt.Errorf("%w: bad time", ErrMalformedDataset)

	// ErrNotFound is returned for unknown day or stage ids.
	ErrNotFound = errors.New("not found")

	// ErrEmptySelection is returned when a range is requested over no present stages.
	ErrEmptySelection = errors.New("no stages in selection")
)

// ParseError reports a value of the dataset that could not be parsed.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LookupError reports an id that the repository does not know.
type LookupError struct {
	Kind string
	ID   string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.ID, ErrNotFound)
}

func (e *LookupError) Unwrap() error {
	return ErrNotFound
}
