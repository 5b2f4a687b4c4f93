package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/dropship/internal/cliconfig"
	"github.com/bft-labs/dropship/pkg/log"
	"github.com/bft-labs/dropship/pkg/store"
	"github.com/bft-labs/dropship/pkg/upload"
)

const helpDescription = `
Upload files to any HTTP endpoint described by a ShareX-style server profile
and print the resulting link.

Highlights:
  - Multipart uploads with live progress; link extracted from JSON or plain text.
  - One upload at a time: a new drop cancels the unfinished one.
  - Profile stored under ~/.dropship and hot-reloaded while dropping.
  - Configure via file ($HOME/.dropship/config.toml), DROPSHIP_* env, or flags.
`

var exampleUsage = strings.TrimSpace(`
  dropship profile import ~/Downloads/imgur.sxcu
  dropship upload ~/Pictures/shot.png
  find ~/Pictures -name '*.png' | dropship drop
`)

// exitCanceled is the conventional exit status after SIGINT.
const exitCanceled = 130

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries state shared by all commands.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	zlog   zerolog.Logger
	logger log.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root, c := newRootCmd(stdin, stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case upload.IsCanceled(err):
		fmt.Fprintln(stderr, "canceled")
		return exitCanceled
	default:
		c.zlog.Error().Err(err).Msg("dropship")
		return 1
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) (*cobra.Command, *cli) {
	c := &cli{
		cfg:    cliconfig.DefaultConfig(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		zlog:   log.NewConsoleLogger(stderr, "info"),
		logger: log.NewNoopLogger(),
	}

	root := &cobra.Command{
		Use:               "dropship",
		Short:             "Upload files to a ShareX-style server profile and print the link",
		Long:              strings.TrimSpace(helpDescription),
		Example:           exampleUsage,
		Version:           fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.loadConfig,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.dropship/config.toml)")
	pf.StringVar(&c.cfg.ProfilePath, "profile", c.cfg.ProfilePath, "path of the stored server profile")
	pf.DurationVar(&c.cfg.HTTPTimeout, "timeout", c.cfg.HTTPTimeout, "HTTP timeout per upload (0 disables)")
	pf.DurationVar(&c.cfg.WatchDebounce, "watch-debounce", c.cfg.WatchDebounce, "quiet period before reloading a changed profile")
	if err := pf.MarkHidden("watch-debounce"); err != nil {
		c.zlog.Info().Err(err).Msg("failed to hide watch-debounce flag")
	}
	pf.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.BoolVarP(&c.cfg.Quiet, "quiet", "q", c.cfg.Quiet, "print only links and errors")

	root.AddCommand(
		c.newUploadCmd(),
		c.newDropCmd(),
		c.newProfileCmd(),
	)
	return root, c
}

// loadConfig applies file, env, and flag settings in that order of
// increasing precedence, then builds the logger.
func (c *cli) loadConfig(cmd *cobra.Command, _ []string) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.zlog = log.NewConsoleLogger(c.stderr, c.cfg.LogLevel)
	if c.cfg.Quiet && c.zlog.GetLevel() < zerolog.WarnLevel {
		c.zlog = c.zlog.Level(zerolog.WarnLevel)
	}
	c.logger = log.NewZerologAdapterWithLogger(c.zlog)
	c.zlog.Debug().Interface("config", c.cfg).Msg("configuration")
	return nil
}

func (c *cli) repo() *store.FileRepository {
	return store.NewFileRepository(c.cfg.ProfilePath)
}
