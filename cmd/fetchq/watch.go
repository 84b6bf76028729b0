package main

import (
	"github.com/spf13/cobra"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Attach to the backend and watch in-flight downloads",
		Long: `watch polls the backend's status endpoint and renders every download it
reports until the backend goes idle. Useful when jobs were queued by
another client or a previous fetchq invocation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			w := newWatcher(cfg)
			defer w.close()

			w.svc.StartPolling()
			return w.watch(cmd.Context())
		},
	}

	return cmd
}
