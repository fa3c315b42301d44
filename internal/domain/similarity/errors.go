package similarity

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for similarity queries. Callers match them with errors.Is.
var (
	ErrDataUnavailable   = errors.New("population not loaded")
	ErrNotFound          = errors.New("player not found")
	ErrInvalidAttribute  = errors.New("invalid attribute")
	ErrEmptyAttributeSet = errors.New("empty attribute set")
	ErrInvalidWeights    = errors.New("invalid weights")
	ErrInvalidLimit      = errors.New("invalid limit")
)

// AttributeError names the attribute that failed validation.
type AttributeError struct {
	Name   string
	Reason string
}

func (e *AttributeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unknown attribute: %s", e.Name)
	}
	return fmt.Sprintf("invalid attribute %s: %s", e.Name, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidAttribute.
func (e *AttributeError) Unwrap() error { return ErrInvalidAttribute }

func unknownAttribute(name string) error {
	return &AttributeError{Name: name}
}

func notNumeric(name string, id int) error {
	return &AttributeError{Name: name, Reason: fmt.Sprintf("no numeric value on player %d", id)}
}
