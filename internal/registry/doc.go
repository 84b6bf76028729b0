package registry

// Package registry implements the in-memory store of download jobs. It is
// the single source of truth for rendering: snapshots from the backend are
// merged into it, and list views read from it. Records are keyed by job id;
// a second update for a known id mutates the existing record in place and
// never creates a duplicate.
