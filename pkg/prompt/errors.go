package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoDriver is returned when the filler has no prompt driver.
	ErrNoDriver = errors.New("prompt: prompt driver is nil")
)
