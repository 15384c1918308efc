package blueprints

import "errors"

var (
	// ErrEmptyInput signals that no interview responses were provided.
	ErrEmptyInput = errors.New("interview responses are required")
	// ErrMalformedBlueprint signals that the model output could not be
	// parsed or failed structural validation. Never repaired silently:
	// fabricating a blueprint is worse than surfacing the failure.
	ErrMalformedBlueprint = errors.New("malformed blueprint")
)

const (
	ErrorCodeValidation         = "VALIDATION_ERROR"
	ErrorCodeServiceUnavailable = "AI_SERVICE_UNAVAILABLE"
	ErrorCodeMalformedOutput    = "AI_MALFORMED_OUTPUT"
	ErrorCodeInternal           = "INTERNAL_ERROR"
)
