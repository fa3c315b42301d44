package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrQueueFull    = errors.New("import queue full")
	ErrNoSource     = errors.New("no import source configured")
	ErrJobNotFound  = errors.New("import job not found")
	ErrInvalidPage  = errors.New("invalid page")
	ErrSourceDenied = errors.New("import source not allowed")
	ErrEmptyImport  = errors.New("import source has no players")
)
