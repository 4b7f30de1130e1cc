package types

import "github.com/m-mizutani/goerr/v2"

// Error kinds of the generation pipeline. Callers classify failures
// with errors.Is against these sentinels; the HTTP layer maps each
// kind to a status code.
var (
	// ErrValidation marks rejected input: missing identifiers, empty
	// sample sets, unknown task kinds.
	ErrValidation = goerr.New("validation failed")

	// ErrEmbeddingService marks a failed embedding call against the
	// upstream model provider.
	ErrEmbeddingService = goerr.New("embedding service failed")

	// ErrGeneration marks a failed or timed-out text generation call.
	ErrGeneration = goerr.New("text generation failed")

	// ErrComposition marks an internal prompt composition failure.
	ErrComposition = goerr.New("prompt composition failed")

	// ErrPersistence marks a storage read or write failure.
	ErrPersistence = goerr.New("persistence failed")
)

// ErrNotFound is returned by repositories when a requested entity does
// not exist. Backends wrap it so callers match with errors.Is without
// knowing the backend.
var ErrNotFound = goerr.New("not found")
