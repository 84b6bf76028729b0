package model

// JobStatus represents the status of a tracked download job
type JobStatus string

const (
	// JobStatusQueued means the job is known but the backend has not
	// reported any progress for it yet
	JobStatusQueued JobStatus = "Queued"

	// JobStatusInProgress means the backend has reported transferred bytes
	JobStatusInProgress JobStatus = "InProgress"

	// JobStatusFinished means the backend completed the job successfully
	JobStatusFinished JobStatus = "Finished"

	// JobStatusErrored means the job failed with an error
	JobStatusErrored JobStatus = "Errored"
)

// String returns the string representation of JobStatus
func (js JobStatus) String() string {
	return string(js)
}

// IsTerminal returns true if the job is in a final state. Terminal states
// are sticky: a job never leaves them through further status updates.
func (js JobStatus) IsTerminal() bool {
	return js == JobStatusFinished || js == JobStatusErrored
}
