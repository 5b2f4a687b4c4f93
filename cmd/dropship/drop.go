package main

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/bft-labs/dropship/pkg/dropship"
	"github.com/bft-labs/dropship/pkg/log"
	"github.com/bft-labs/dropship/pkg/profile"
	"github.com/bft-labs/dropship/pkg/store"
	"github.com/bft-labs/dropship/pkg/upload"
)

func (c *cli) newDropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop",
		Short: "Upload each file path read from stdin, newest drop wins",
		Long: strings.TrimSpace(`
Reads file paths (or file:// URLs) from stdin, one per line, and uploads
each one. A new path cancels the upload still in flight. Links are printed
to stdout as uploads finish. The stored profile is reloaded when it changes
on disk.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			queue := upload.NewQueue()
			progress := newProgressPrinter(c.stderr, c.cfg.Quiet)
			pending := &pendingUploads{queue: queue}

			d := c.newDropship(queue, dropship.EventHandlerFuncs{
				Start: func(e dropship.StartEvent) {
					pending.add()
					progress.start(e)
				},
				Progress: progress.update,
				Success: func(e dropship.SuccessEvent) {
					progress.finish()
					fmt.Fprintln(c.stdout, e.URL)
					pending.done()
				},
				Failure: func(e dropship.FailureEvent) {
					progress.finish()
					if !e.Canceled {
						fmt.Fprintf(c.stderr, "%s: %v\n", e.Filename, e.Err)
					} else if !c.cfg.Quiet {
						fmt.Fprintf(c.stderr, "%s: canceled\n", e.Filename)
					}
					pending.done()
				},
			})

			watchCtx, stopWatch := context.WithCancel(ctx)
			defer stopWatch()
			watcher := store.NewWatcher(c.repo(), store.WatcherConfig{DebounceDelay: c.cfg.WatchDebounce}, c.logger)
			go func() {
				err := watcher.Watch(watchCtx, func(p *profile.Profile, err error) {
					// nil falls back to the repository, which reports the error.
					d.SetProfile(p)
				})
				if err != nil {
					c.logger.Warn("profile hot-reload disabled", log.Err(err))
				}
			}()

			finished := make(chan struct{})
			defer close(finished)
			go func() {
				select {
				case <-ctx.Done():
					d.Cancel()
					pending.closeWhenIdle()
				case <-finished:
				}
			}()

			go func() {
				defer pending.closeWhenIdle()
				scanner := bufio.NewScanner(c.stdin)
				for scanner.Scan() {
					if ctx.Err() != nil {
						return
					}
					path := dropPath(scanner.Text())
					if path == "" {
						continue
					}
					if _, err := d.UploadFile(ctx, path); err != nil {
						fmt.Fprintf(c.stderr, "%s: %v\n", path, err)
					}
				}
				if err := scanner.Err(); err != nil {
					c.logger.Error("read stdin", log.Err(err))
				}
			}()

			queue.Run(context.Background())
			if err := ctx.Err(); err != nil {
				return &upload.Error{Kind: upload.ErrCanceled, Err: err}
			}
			return nil
		},
	}
}

// dropPath turns one line of input into a file path.
func dropPath(line string) string {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "file://") {
		if u, err := url.Parse(line); err == nil {
			return u.Path
		}
	}
	return line
}

// pendingUploads closes the queue once input has ended and every started
// upload has reported its outcome.
type pendingUploads struct {
	queue *upload.Queue

	mu    sync.Mutex
	n     int
	ended bool
}

func (p *pendingUploads) add() {
	p.mu.Lock()
	p.n++
	p.mu.Unlock()
}

func (p *pendingUploads) done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n--
	p.maybeClose()
}

func (p *pendingUploads) closeWhenIdle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ended = true
	p.maybeClose()
}

func (p *pendingUploads) maybeClose() {
	if p.ended && p.n == 0 {
		p.queue.Close()
	}
}
