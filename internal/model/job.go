package model

import (
	"fmt"
	"time"
)

// DownloadJob represents a single tracked file fetch. The backend processes
// jobs out-of-band; the client only ever sees them through submit
// acknowledgements and status snapshots.
type DownloadJob struct {
	ID         string
	Filename   string    // display name, set at creation
	Filesize   *int64    // bytes transferred so far, nil until reported
	Status     JobStatus
	Error      string    // set only when Status is JobStatusErrored
	CreatedAt  time.Time // client-local clock
	ModifiedAt time.Time // last reconciled change
}

// SizeString returns the transferred size as a human-readable string,
// or an em dash if the backend has not reported a size yet.
func (j *DownloadJob) SizeString() string {
	if j.Filesize == nil {
		return "—"
	}
	return FormatBytes(*j.Filesize)
}

// SortKey returns the timestamp used to order jobs in list views.
// Finished jobs sort by creation time so a long-finished download does not
// jump to the top of the list on re-render; everything else sorts by the
// last reconciled change.
func (j *DownloadJob) SortKey() time.Time {
	if j.Status == JobStatusFinished {
		return j.CreatedAt
	}
	return j.ModifiedAt
}

// DownloadRequest is the payload submitted to the backend.
type DownloadRequest struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// JobAck is the backend's acknowledgement of a submitted request.
type JobAck struct {
	ID       string
	Filename string
}

// FormatBytes formats bytes as a human-readable string.
func FormatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
