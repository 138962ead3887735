package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrSiteNotFound indicates no published site matches the requested name.
	// Fatal for the whole content call.
	ErrSiteNotFound = errors.New("site not found")

	// ErrPoolUnavailable indicates a store has no configured connection pool.
	// This is a configuration error and is fatal.
	ErrPoolUnavailable = errors.New("connection pool unavailable")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no normaliser handles a MIME type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEngineClosed indicates the engine has already been shut down.
	ErrEngineClosed = errors.New("engine closed")

	// Per-record errors. These are recovered by the streams: the record is
	// logged and skipped, the stream continues.

	// ErrExtraction indicates a record produced no usable text.
	ErrExtraction = errors.New("extraction failed")

	// ErrFetch indicates a blob could not be downloaded from the origin.
	ErrFetch = errors.New("fetch failed")

	// ErrParse indicates stored or downloaded content could not be parsed.
	ErrParse = errors.New("parse failed")
)
