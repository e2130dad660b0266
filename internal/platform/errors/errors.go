package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrSessionActive       = errors.New("session already running")
	ErrNotRunning          = errors.New("session is not running")
	ErrNoActiveDistraction = errors.New("no active distraction")
	ErrWrongInterruption   = errors.New("action does not apply to the active distraction")
	ErrRecoveryNotReady    = errors.New("recovery prompt not reached yet")
	ErrNoReport            = errors.New("no session report available")
)
