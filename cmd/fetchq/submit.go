package main

import (
	"fmt"
	"net/url"
	"path"

	"github.com/spf13/cobra"

	"github.com/fetchq/fetchq/internal/model"
)

func newSubmitCmd(root *rootOptions) *cobra.Command {
	var (
		filename string
		noWait   bool
	)

	cmd := &cobra.Command{
		Use:     "submit <url>...",
		Short:   "Queue one or more file downloads on the backend",
		Example: "  fetchq submit http://example.com/movie.mkv --filename movie.mkv",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if filename != "" && len(args) > 1 {
				return fmt.Errorf("--filename only applies to a single url")
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			w := newWatcher(cfg)
			defer w.close()

			for _, rawURL := range args {
				name := filename
				if name == "" {
					name = deriveFilename(rawURL)
				}
				job, err := w.svc.Submit(cmd.Context(), model.DownloadRequest{URL: rawURL, Filename: name})
				if err != nil {
					return err
				}
				fmt.Printf("queued %s (%s)\n", job.Filename, job.ID)
			}

			if noWait {
				return nil
			}
			return w.watch(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&filename, "filename", "f", "", "target filename (default: derived from the url)")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "queue and exit without watching progress")

	return cmd
}

// deriveFilename extracts a target filename from a download URL.
func deriveFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "download.bin"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "download.bin"
	}
	return name
}
