package executor

import "errors"

var (
	// ErrSignalNotFound means the id is not in the pending set. Terminal
	// signals are not addressable; the executor forgets them on purpose.
	ErrSignalNotFound = errors.New("signal not found in pending set")

	// ErrSignalRequired is returned when Submit receives a nil or blank signal.
	ErrSignalRequired = errors.New("signal with id and symbol required")
)
