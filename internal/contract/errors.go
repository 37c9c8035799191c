package contract

import "errors"

// ErrMissingInput is returned when a file or directory a stage depends on does not exist.
var ErrMissingInput = errors.New("missing input")

// ErrMalformedReport is returned when a JSON document does not have the expected shape.
var ErrMalformedReport = errors.New("malformed report")
