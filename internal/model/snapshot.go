package model

// JobUpdate is a partial job record carried by a status snapshot. Only ID is
// guaranteed; absent fields leave the registry record untouched.
type JobUpdate struct {
	ID       string
	Filename string // empty means unchanged
	Filesize *int64 // nil means unchanged
}

// JobError attaches a failure message to a job, independent of progress
// updates for the same job.
type JobError struct {
	ID      string
	Message string
}

// StatusSnapshot is the unit of state transferred per poll of the shared
// status endpoint.
type StatusSnapshot struct {
	// Finished reports that no job is currently being processed by the
	// backend. This is a global signal, not a per-job one.
	Finished bool

	// Updates are partial job records, in the order the backend listed them.
	Updates []JobUpdate

	// Errors carry per-job failure messages. Errors and updates are
	// independent channels: the same id may appear in both within one
	// snapshot.
	Errors []JobError
}
