package agent

import "errors"

var (
	// ErrThreadNotFound is returned by thread stores for unknown threads.
	ErrThreadNotFound = errors.New("thread not found")

	// ErrInterruptPending is returned when a new turn is started on a
	// thread that is suspended awaiting a resume.
	ErrInterruptPending = errors.New("thread has a pending interrupt")

	// ErrNoPendingInterrupt is returned when a resume arrives for a
	// thread with nothing to resume.
	ErrNoPendingInterrupt = errors.New("thread has no pending interrupt")
)
