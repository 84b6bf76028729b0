package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fetchq/fetchq/internal/model"
)

// Common errors.
var (
	ErrBadRequest   = errors.New("api: backend rejected the request")
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrServerError  = errors.New("api: server error")
)

const (
	downloadPath = "/api/v1/download"
	statusPath   = "/api/v1/download/info"
)

// Options configures the API client.
type Options struct {
	// BaseURL is the backend's root URL, without a trailing slash.
	BaseURL string

	// Token is an optional bearer token sent with every request.
	Token string

	// Timeout for individual requests.
	// Default: 30s
	Timeout time.Duration

	// UserAgent sent with every request.
	// Default: "fetchq"
	UserAgent string
}

// Client talks to the backend's download API.
type Client struct {
	client  *http.Client
	baseURL string
	token   string
	agent   string
}

// NewClient creates a new API client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "fetchq"
	}

	return &Client{
		client:  &http.Client{Timeout: opts.Timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		agent:   opts.UserAgent,
	}
}

// downloadInfo is the wire representation of one download.
type downloadInfo struct {
	UUID     string `json:"uuid"`
	Filename string `json:"filename"`
	Filesize int64  `json:"filesize"`
	Finished bool   `json:"finished"`
	Error    string `json:"error"`
}

// statusResponse is the wire representation of the status endpoint.
type statusResponse struct {
	Completed bool           `json:"completed"`
	Downloads []downloadInfo `json:"downloads"`
	Active    *downloadInfo  `json:"active"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// SubmitDownload queues a file fetch on the backend and returns the
// acknowledgement carrying the server-assigned job id.
func (c *Client) SubmitDownload(ctx context.Context, req model.DownloadRequest) (model.JobAck, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return model.JobAck{}, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+downloadPath, bytes.NewReader(body))
	if err != nil {
		return model.JobAck{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setCommonHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return model.JobAck{}, fmt.Errorf("submit download: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatusCode(resp); err != nil {
		return model.JobAck{}, err
	}

	var info downloadInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return model.JobAck{}, fmt.Errorf("decode acknowledgement: %w", err)
	}
	if info.Error != "" {
		return model.JobAck{}, fmt.Errorf("%w: %s", ErrBadRequest, info.Error)
	}

	return model.JobAck{ID: info.UUID, Filename: info.Filename}, nil
}

// PollStatus fetches the shared status endpoint. Safe to call repeatedly;
// the backend drains its finished list on every call, so each snapshot must
// be reconciled into the registry rather than treated as a full state.
func (c *Client) PollStatus(ctx context.Context) (model.StatusSnapshot, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+statusPath, nil)
	if err != nil {
		return model.StatusSnapshot{}, fmt.Errorf("create request: %w", err)
	}
	c.setCommonHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return model.StatusSnapshot{}, fmt.Errorf("poll status: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatusCode(resp); err != nil {
		return model.StatusSnapshot{}, err
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return model.StatusSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	return decodeSnapshot(status), nil
}

// decodeSnapshot maps the wire payload onto the snapshot's two channels.
// Finished downloads come first, the active one last, preserving the
// backend's ordering. A download carrying an error message contributes to
// both channels.
func decodeSnapshot(status statusResponse) model.StatusSnapshot {
	snapshot := model.StatusSnapshot{Finished: status.Completed}

	infos := status.Downloads
	if status.Active != nil {
		infos = append(infos, *status.Active)
	}

	for _, info := range infos {
		update := model.JobUpdate{ID: info.UUID, Filename: info.Filename}
		if info.Filesize > 0 {
			size := info.Filesize
			update.Filesize = &size
		}
		snapshot.Updates = append(snapshot.Updates, update)

		if info.Error != "" {
			snapshot.Errors = append(snapshot.Errors, model.JobError{ID: info.UUID, Message: info.Error})
		}
	}

	return snapshot
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.agent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// checkStatusCode returns an appropriate error for non-success status
// codes, including the backend's error message when one is present.
func checkStatusCode(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}

	message := ""
	if body, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		var er errorResponse
		if json.Unmarshal(body, &er) == nil {
			message = er.Error
		}
	}

	var base error
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		base = ErrUnauthorized
	case code >= 500:
		base = ErrServerError
	default:
		base = ErrBadRequest
	}

	if message != "" {
		return fmt.Errorf("%w: %d %s", base, code, message)
	}
	return fmt.Errorf("%w: %d %s", base, code, resp.Status)
}
