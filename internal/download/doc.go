package download

// Package download implements the coordinator facade over the job registry,
// the notification bus, the backend API client, and the poll loop. It is the
// single entry point for callers: submit requests, read the registry, and
// subscribe to new-job notifications. Submitting a job inserts a provisional
// record first and then nudges the poll loop awake.
