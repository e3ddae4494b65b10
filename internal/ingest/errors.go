package ingest

import (
	"errors"
	"fmt"
)

var (
	ErrNoObservation = errors.New("no observation record")
	ErrMissingField  = errors.New("missing field")
)

// StatusError is returned when the weather API answers with a non-2xx status.
type StatusError struct {
	StationID  int
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("station %d: unexpected status %d: %s", e.StationID, e.StatusCode, e.Body)
}

// ResultCodeError is returned when the API answers 2xx but the embedded
// result code is not success.
type ResultCodeError struct {
	StationID int
	Code      string
	Message   string
}

func (e *ResultCodeError) Error() string {
	return fmt.Sprintf("station %d: result code %q: %s", e.StationID, e.Code, e.Message)
}
