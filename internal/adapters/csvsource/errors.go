package csvsource

import "errors"

var (
	// ErrNoHeader is returned when the input has no header row.
	ErrNoHeader = errors.New("csv has no header row")
	// ErrMissingIDColumn is returned when the header has no ID column.
	ErrMissingIDColumn = errors.New("csv header has no ID column")
)
