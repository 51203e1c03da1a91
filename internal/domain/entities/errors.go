package entities

import "errors"

// Sentinel errors returned by domain services. The HTTP layer maps these to
// status codes; everything else becomes a 500.
var (
	// ErrCollectionNotFound is returned when a named collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidName is returned when a collection name fails validation.
	ErrInvalidName = errors.New("invalid collection name")

	// ErrCollectionExists is returned when creating or renaming onto a name
	// that is already taken.
	ErrCollectionExists = errors.New("collection already exists")

	// ErrNoDocumentsDeleted is returned when a delete request matched nothing.
	ErrNoDocumentsDeleted = errors.New("no documents found to delete")

	// ErrLLMUnavailable is returned when the LLM endpoint cannot be reached.
	ErrLLMUnavailable = errors.New("llm service is unavailable")
)
