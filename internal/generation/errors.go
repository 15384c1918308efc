package generation

import "errors"

var (
	// ErrGenerationInFlight signals a second generation attempt for a
	// chapter whose lease is already held. A naive concurrent retry
	// would race on the persisted content, so it fails fast instead.
	ErrGenerationInFlight = errors.New("generation already in flight for chapter")
)

const (
	ErrorCodeValidation         = "VALIDATION_ERROR"
	ErrorCodeNotFound           = "NOT_FOUND"
	ErrorCodeServiceUnavailable = "AI_SERVICE_UNAVAILABLE"
	ErrorCodeInFlight           = "GENERATION_IN_FLIGHT"
	ErrorCodeInternal           = "INTERNAL_ERROR"
)
