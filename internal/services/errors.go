package services

import "errors"

var (
	// ErrInvalidInput marks a planning request that can never succeed:
	// no targets, a non-positive capacity, an invalid depot or a target
	// without a resolved coordinate.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDepotNotFound is returned when the depot address cannot be geocoded.
	ErrDepotNotFound = errors.New("depot not found")
)
