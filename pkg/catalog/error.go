package catalog

import "errors"

var (
	// ErrNotFound is returned when a record is not found in the store.
	ErrNotFound = errors.New("record not found")

	// ErrBadPipeline is returned when a pipeline cannot be parsed or
	// references an unsupported stage or operator.
	ErrBadPipeline = errors.New("invalid aggregation pipeline")

	// ErrConnection is returned when the backing store is unreachable.
	ErrConnection = errors.New("catalog store connection failed")
)
