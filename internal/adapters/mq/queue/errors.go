package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrFull   = errors.New("import queue full")
	ErrClosed = errors.New("import queue closed")
)
