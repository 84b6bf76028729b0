package download

import (
	"context"

	"github.com/fetchq/fetchq/internal/model"
)

// Backend is the network layer the coordinator drives: one call to queue a
// job, one to fetch the shared status snapshot.
type Backend interface {
	SubmitDownload(ctx context.Context, req model.DownloadRequest) (model.JobAck, error)
	PollStatus(ctx context.Context) (model.StatusSnapshot, error)
}
