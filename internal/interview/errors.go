package interview

import "errors"

var (
	// ErrSessionNotFound is returned when the session id does not resolve
	// to a live session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInterviewCompleted is returned when a question is requested after
	// all questions were asked. It is a terminal condition, not a fault.
	ErrInterviewCompleted = errors.New("interview completed")
)
