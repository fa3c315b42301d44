package model

import "time"

// ImportJob asks for the population to be replaced from a source file.
type ImportJob struct {
	ID          string    // uuid assigned on submit
	Source      string    // path of the CSV file
	SubmittedAt time.Time // when the job was accepted
}

// ImportState is the lifecycle state of an import job.
type ImportState string

// Import job states.
const (
	ImportQueued    ImportState = "queued"
	ImportRunning   ImportState = "running"
	ImportSucceeded ImportState = "succeeded"
	ImportFailed    ImportState = "failed"
)

// ImportResult summarizes a finished import.
type ImportResult struct {
	Imported   int
	Skipped    int
	Generation uint64
}

// ImportStatus is the externally visible progress of an import job.
type ImportStatus struct {
	Job        ImportJob
	State      ImportState
	Result     ImportResult
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}
