// Package cli implements the judolhunter command line: one-shot scans with a
// terminal report, the HTTP API server and the cloaking demo site.
package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/raysh454/judolhunter/internal/app"
	"github.com/raysh454/judolhunter/internal/logging"
)

const (
	CLIName = "judolhunter"
	VERSION = "v0.1.0"
)

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	debug   bool
	quiet   bool
	noColor bool

	patterns    string
	storage     string
	timeout     time.Duration
	concurrency int
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:     CLIName,
		Short:   "Deteksi URL tersusupi link judi online",
		Long:    fmt.Sprintf("Judol Hunter %s - deteksi cloaking dan konten judi online yang disusupkan ke situs web", VERSION),
		Version: VERSION,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}
	registerGlobalFlags(cmd.PersistentFlags(), opts)
	cmd.SilenceUsage = true

	cmd.AddCommand(newScanCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newDemoCmd(opts))
	return cmd
}

func registerGlobalFlags(fs *pflag.FlagSet, opts *globalOptions) {
	defaults := app.DefaultConfig()

	fs.BoolVar(&opts.debug, "debug", false, "Turn on debug logging")
	fs.BoolVarP(&opts.quiet, "quiet", "q", false, "Only print the summary")
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	fs.StringVar(&opts.patterns, "patterns", "", "Pattern database JSON file (default: built in)")
	fs.StringVar(&opts.storage, "storage", defaults.StorageRoot, "Directory for the scan history database")
	fs.DurationVarP(&opts.timeout, "timeout", "m", defaults.Fetcher.Timeout, "Timeout for both fetches of one page")
	fs.IntVar(&opts.concurrency, "concurrency", defaults.MaxConcurrency, "Maximum pages scanned at once")
}

// appConfig overlays the global flags onto the default configuration.
func (o *globalOptions) appConfig() *app.Config {
	cfg := app.DefaultConfig()
	if o.patterns != "" {
		cfg.PatternsPath = o.patterns
	}
	if o.storage != "" {
		cfg.StorageRoot = o.storage
	}
	if o.timeout > 0 {
		cfg.Fetcher.Timeout = o.timeout
	}
	if o.concurrency > 0 {
		cfg.MaxConcurrency = o.concurrency
	}
	return cfg
}

// logger returns the terminal logger. Log lines only reach stderr with
// --debug or verbose; scan output is printed separately.
func (o *globalOptions) logger(verbose bool) logging.Logger {
	l, _ := logging.NewCLILogger(CLIName, logging.Options{Debug: o.debug, Verbose: verbose, Quiet: o.quiet})
	return l
}
