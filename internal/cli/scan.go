package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/raysh454/judolhunter/internal/app"
	"github.com/raysh454/judolhunter/internal/model"
)

// cliActor owns scans started from the command line.
const cliActor = "cli"

var ErrNoTargets = errors.New("tidak ada URL untuk di-scan")

type scanOptions struct {
	file    string
	output  string
	crawl   bool
	verbose bool
	save    bool

	depth int
	pages int
}

func newScanCmd(global *globalOptions) *cobra.Command {
	opts := &scanOptions{}
	defaults := app.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Scan URL untuk cloaking dan link judol",
		Example: strings.Join([]string{
			"  judolhunter scan https://example.com",
			"  judolhunter scan -f urls.txt",
			"  judolhunter scan -f urls.txt -o hasil.json",
			"  judolhunter scan https://example.com -v",
			"  judolhunter scan https://example.com --crawl",
			"  cat urls.txt | judolhunter scan",
		}, "\n"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, global, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "File berisi daftar URL (satu per baris)")
	f.StringVarP(&opts.output, "output", "o", "", "Simpan hasil ke file JSON")
	f.BoolVarP(&opts.crawl, "crawl", "c", false, "Crawl subpage untuk cari halaman tersusupi")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Tampilkan detail proses")
	f.BoolVar(&opts.save, "save", false, "Simpan hasil ke riwayat scan")
	f.IntVarP(&opts.depth, "depth", "d", defaults.Crawl.MaxDepth, "Kedalaman maksimum crawl")
	f.IntVar(&opts.pages, "max-pages", defaults.Crawl.MaxPages, "Jumlah maksimum halaman yang di-crawl per URL")
	f.SortFlags = false
	return cmd
}

func runScan(cmd *cobra.Command, args []string, global *globalOptions, opts *scanOptions) error {
	targets, err := gatherTargets(args, opts.file, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return ErrNoTargets
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	cfg := global.appConfig()
	cfg.Crawl.MaxDepth = opts.depth
	cfg.Crawl.MaxPages = opts.pages
	cfg.Quota.Enabled = false

	var sink *Printer
	if !global.quiet {
		printBanner(errOut)
		mode := ""
		if opts.crawl {
			mode = " (crawl mode)"
		}
		color.New(color.FgCyan).Fprintf(errOut, "Total URL: %d%s\n\n", len(targets), mode)
		sink = NewPrinter(errOut, opts.verbose)
	}

	appOpts := app.AppOptions{Persist: opts.save}
	if sink != nil {
		appOpts.Sink = sink
	}
	a, err := app.NewApplication(cfg, global.logger(false), appOpts)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = a.Shutdown(ctx)
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handles, err := a.Orch.Submit(ctx, targets, opts.crawl, cliActor)
	for _, h := range handles {
		if h.Error != "" {
			color.New(color.FgRed).Fprintf(errOut, "✗ %s: %s\n", h.URL, h.Error)
		}
	}
	if err != nil {
		return err
	}

	results := collectResults(ctx, a.Orch, handles)

	if !global.quiet {
		for _, res := range results {
			WriteReport(out, res)
		}
	}
	WriteTable(out, results, color.NoColor)

	if opts.output != "" {
		if err := WriteJSON(opts.output, results); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(out, "\nHasil disimpan ke %s\n", opts.output)
	}
	return nil
}

// collectResults waits for every accepted scan and returns the root results
// followed by the pages their crawls scanned. An interrupt cancels the
// remaining scans; their cancelled results are still reported.
func collectResults(ctx context.Context, orch *app.Orchestrator, handles []app.Handle) []*model.ScanResult {
	var ids []string
	for _, h := range handles {
		if h.ScanID != "" {
			ids = append(ids, h.ScanID)
		}
	}

	stopCancel := context.AfterFunc(ctx, func() {
		for _, id := range ids {
			_ = orch.CancelScan(id)
		}
	})
	defer stopCancel()

	var results []*model.ScanResult
	for _, id := range ids {
		res, err := orch.Wait(context.Background(), id)
		if err != nil {
			continue
		}
		results = append(results, res)
		for _, page := range res.Crawled {
			if child, err := orch.GetResult(page.ScanID); err == nil {
				results = append(results, child)
			}
		}
	}
	return results
}

// gatherTargets merges positional URLs, the lines of file and piped stdin.
// Blank lines and lines starting with # are skipped.
func gatherTargets(args []string, file string, stdin io.Reader) ([]string, error) {
	var targets []string
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			targets = append(targets, a)
		}
	}

	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("file '%s' tidak ditemukan", file)
			}
			return nil, err
		}
		defer f.Close()
		lines, err := readLines(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		targets = append(targets, lines...)
	}

	if piped(stdin) {
		lines, err := readLines(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		targets = append(targets, lines...)
	}
	return targets, nil
}

// piped reports whether r has input to read. A terminal never does.
func piped(r io.Reader) bool {
	if r == nil {
		return false
	}
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	stat, err := f.Stat()
	return err == nil && (stat.Mode()&os.ModeCharDevice) == 0
}

func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
