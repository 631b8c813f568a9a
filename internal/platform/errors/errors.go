package apperrors

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInvalidCandidate  = errors.New("invalid scan candidate")
	ErrPipelineBusy      = errors.New("scan pipeline busy")
	ErrUnknownStudent    = errors.New("unknown student")
	ErrSessionEnded      = errors.New("session already ended")
	ErrUnsupportedFormat = errors.New("unsupported report format")
)
