package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/bft-labs/dropship/pkg/dropship"
	"github.com/bft-labs/dropship/pkg/upload"
)

func (c *cli) newDropship(d upload.Dispatcher, h dropship.EventHandler) *dropship.Dropship {
	return dropship.New(
		dropship.WithRepository(c.repo()),
		dropship.WithHTTPClient(&http.Client{Timeout: c.cfg.HTTPTimeout}),
		dropship.WithLogger(c.logger),
		dropship.WithDispatcher(d),
		dropship.WithEventHandler(h),
	)
}

func (c *cli) newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload one file and print its link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Callbacks run on this goroutine via queue.Run.
			queue := upload.NewQueue()
			progress := newProgressPrinter(c.stderr, c.cfg.Quiet)

			var (
				link   *url.URL
				result error
			)
			d := c.newDropship(queue, dropship.EventHandlerFuncs{
				Start:    progress.start,
				Progress: progress.update,
				Success: func(e dropship.SuccessEvent) {
					progress.finish()
					link = e.URL
					queue.Close()
				},
				Failure: func(e dropship.FailureEvent) {
					progress.finish()
					result = e.Err
					queue.Close()
				},
			})

			if _, err := d.UploadFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			queue.Run(context.Background())

			if result != nil {
				return result
			}
			fmt.Fprintln(c.stdout, link)
			return nil
		},
	}
}
