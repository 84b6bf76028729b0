// Package api implements the HTTP client for the backend's download API.
//
// The backend processes downloads out-of-band and exposes two endpoints:
//
//   - POST /api/v1/download queues a file fetch and acknowledges it with
//     the server-assigned job id.
//   - GET /api/v1/download/info returns a status snapshot: a global
//     "completed" flag, the drained list of finished downloads, and the
//     currently active download if any.
//
// PollStatus decodes the raw payload into a model.StatusSnapshot, splitting
// progress updates and per-job errors into independent channels.
package api
