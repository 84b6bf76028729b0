package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/fetchq/fetchq/internal/api"
	"github.com/fetchq/fetchq/internal/config"
	"github.com/fetchq/fetchq/internal/download"
	"github.com/fetchq/fetchq/internal/model"
)

var statusColors = map[model.JobStatus]*color.Color{
	model.JobStatusQueued:     color.New(color.FgYellow),
	model.JobStatusInProgress: color.New(color.FgCyan),
	model.JobStatusFinished:   color.New(color.FgGreen),
	model.JobStatusErrored:    color.New(color.FgRed, color.Bold),
}

// watcher wires a coordinator to the terminal: it repaints the job table on
// every registry change and reports how the session ended.
type watcher struct {
	svc       *download.Service
	updates   chan struct{}
	transport chan error
	live      bool // repaint in place when stdout is a TTY
	lastLines int
}

func newWatcher(cfg config.Config) *watcher {
	w := &watcher{
		updates:   make(chan struct{}, 1),
		transport: make(chan error, 1),
		live:      term.IsTerminal(int(os.Stdout.Fd())),
	}

	client := api.NewClient(api.Options{
		BaseURL:   cfg.BaseURL,
		Token:     cfg.Token,
		Timeout:   cfg.RequestTimeout,
		UserAgent: cfg.UserAgent,
	})
	w.svc = download.NewService(client, download.Options{
		PollInterval: cfg.PollInterval,
		OnTransportError: func(err error) {
			select {
			case w.transport <- err:
			default:
			}
		},
	})
	w.svc.SetUpdateCallback(func() {
		select {
		case w.updates <- struct{}{}:
		default:
		}
	})

	return w
}

// watch renders until the poll loop goes idle with no live jobs left, the
// backend becomes unreachable, or the context is cancelled.
func (w *watcher) watch(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	w.render()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-w.transport:
			w.render()
			color.Red("backend unreachable, giving up: %v", err)
			return err
		case <-w.updates:
			w.render()
		case <-ticker.C:
			if !w.svc.Polling() && !w.svc.HasLiveJobs() {
				w.render()
				return nil
			}
		}
	}
}

func (w *watcher) close() {
	w.svc.Close()
}

// render repaints the job table. On a TTY the previous paint is erased so
// the table updates in place; otherwise each paint appends.
func (w *watcher) render() {
	jobs := w.svc.Jobs()

	if w.live && w.lastLines > 0 {
		fmt.Printf("\033[%dA\033[J", w.lastLines)
	}

	for _, job := range jobs {
		fmt.Println(formatJob(&job))
	}
	w.lastLines = len(jobs)
}

func formatJob(job *model.DownloadJob) string {
	status := statusColors[job.Status].Sprintf("%-10s", job.Status)
	line := fmt.Sprintf("%s  %-40s  %10s", status, job.Filename, job.SizeString())
	if job.Error != "" {
		line += "  " + color.RedString(job.Error)
	}
	return line
}
