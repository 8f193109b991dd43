package apperrors

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrNoCurrentSession = errors.New("no current session")

	// Storage taxonomy. Unavailable and quota errors are surfaced to the user,
	// corrupted records are absorbed by the storage adapter.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrQuotaExceeded      = errors.New("storage quota exceeded")
	ErrCorruptedRecord    = errors.New("corrupted record")
	ErrInvalidSession     = errors.New("invalid session")

	ErrNoAPIKey = errors.New("no api key configured")
	ErrPrepAPI  = errors.New("prep api error")
)
