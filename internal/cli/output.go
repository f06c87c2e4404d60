package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"

	"github.com/raysh454/judolhunter/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func printBanner(w io.Writer) {
	fig := figure.NewColorFigure("JUDOL HUNTER", "doom", "red", true)
	_, _ = fmt.Fprint(w, fig.ColorString())

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
	_, _ = green.Fprintf(w, "    Deteksi URL Tersusupi Link Judol | %s\n", VERSION)
	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
}

// ─── Progress ──────────────────────────────────────────────────────────

// Printer writes progress events to the terminal. Without verbose only the
// final line of every scan is shown.
type Printer struct {
	w       io.Writer
	verbose bool
	mu      sync.Mutex
}

func NewPrinter(w io.Writer, verbose bool) *Printer {
	return &Printer{w: w, verbose: verbose}
}

func (p *Printer) Notify(scanID string, ev model.ProgressEvent) {
	if !p.verbose && !finalLine(ev) && ev.Kind != model.EventError {
		return
	}

	c := color.New(color.FgCyan)
	switch ev.Kind {
	case model.EventError:
		c = color.New(color.FgRed)
	case model.EventComplete:
		c = color.New(color.FgGreen)
	case model.EventProgress:
		c = color.New(color.FgWhite)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, "[%s] %s\n", shortID(scanID), c.Sprint(ev.Message))
}

// finalLine reports whether ev is the per-scan verdict line.
func finalLine(ev model.ProgressEvent) bool {
	_, ok := ev.Data["result"]
	return ok && ev.Kind == model.EventProgress
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ─── Report ────────────────────────────────────────────────────────────

func statusColor(s model.ScanStatus) *color.Color {
	switch s {
	case model.StatusClean:
		return color.New(color.FgGreen)
	case model.StatusSuspicious:
		return color.New(color.FgYellow)
	case model.StatusInfected:
		return color.New(color.FgRed)
	default:
		return color.New(color.Faint)
	}
}

func riskColor(r model.RiskLevel) *color.Color {
	switch r {
	case model.RiskLow:
		return color.New(color.FgGreen)
	case model.RiskMedium:
		return color.New(color.FgYellow)
	case model.RiskHigh:
		return color.New(color.FgRed)
	case model.RiskCritical:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.Faint)
	}
}

func riskText(res *model.ScanResult) string {
	if res.Status == model.StatusError || res.Status == model.StatusCancelled || res.RiskLevel == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(string(res.RiskLevel))
}

// WriteReport prints the findings of one scan.
func WriteReport(w io.Writer, res *model.ScanResult) {
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen)
	dim := color.New(color.Faint)

	fmt.Fprintf(w, "\n%s\n", color.New(color.Bold).Sprint(res.URL))
	fmt.Fprintf(w, "  Status: %s  |  Risk: %s\n",
		statusColor(res.Status).Sprint(strings.ToUpper(string(res.Status))),
		riskColor(res.RiskLevel).Sprint(riskText(res)))

	f := res.Findings
	switch c := f.Cloaking; {
	case c.IsDetected():
		red.Fprintln(w, "  ⚠ CLOAKING TERDETEKSI")
		for _, e := range c.Evidence {
			fmt.Fprintf(w, "    - %s\n", e)
		}
	case c != nil && c.Inconclusive:
		dim.Fprintln(w, "  ? Cloaking tidak dapat dipastikan (salah satu fetch gagal)")
	case c != nil:
		fmt.Fprintf(w, "  %s Tidak ada cloaking (similarity: %.2f)\n", green.Sprint("✓"), c.Similarity)
	}

	if k := f.Keywords; k.IsDetected() {
		red.Fprintf(w, "  ⚠ %d keyword judol ditemukan:\n", len(k.Matches))
		for i, m := range k.Matches {
			if i == 10 {
				break
			}
			fmt.Fprintf(w, "    - %q (%dx)\n", m.Keyword, m.Count)
		}
	} else if k != nil {
		fmt.Fprintf(w, "  %s Tidak ada keyword judol\n", green.Sprint("✓"))
	}

	if l := f.Links; l.IsDetected() {
		red.Fprintf(w, "  ⚠ %d link/domain judol ditemukan:\n", l.Count)
		for i, e := range l.Evidence {
			if i == 10 {
				dim.Fprintf(w, "      ... dan %d lainnya\n", len(l.Evidence)-10)
				break
			}
			fmt.Fprintf(w, "    - %s\n", e)
		}
	}

	if h := f.Hidden; h.IsDetected() {
		yellow.Fprintf(w, "  ⚠ %d elemen tersembunyi berisi spam\n", h.Count)
	}

	if m := f.Meta; m.IsDetected() {
		yellow.Fprintf(w, "  ⚠ %d meta tag tersusupi\n", m.Count)
		for _, e := range m.Evidence {
			fmt.Fprintf(w, "    - %s\n", truncate(e, 80))
		}
	}

	for _, side := range []struct {
		label string
		meta  model.FetchMeta
	}{{"googlebot", res.FetchInfo.Crawler}, {"browser", res.FetchInfo.Browser}} {
		if side.meta.Error != "" {
			dim.Fprintf(w, "  ⚠ %s error: %s\n", side.label, side.meta.Error)
		}
	}
	if res.Error != "" {
		dim.Fprintf(w, "  ✗ %s\n", res.Error)
	}
}

// ─── Summary table ─────────────────────────────────────────────────────

var summaryHeaders = []string{"URL", "Status", "Risk", "Issues"}

func summaryRows(results []*model.ScanResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		issues := strings.Join(r.Issues, ", ")
		if issues == "" {
			issues = "-"
		}
		rows = append(rows, []string{
			truncate(r.URL, 50),
			strings.ToUpper(string(r.Status)),
			riskText(r),
			issues,
		})
	}
	return rows
}

// WriteTable renders the scan summary as a styled terminal table.
func WriteTable(w io.Writer, results []*model.ScanResult, noColor bool) {
	if len(results) == 0 {
		fmt.Fprintln(w, "\nTidak ada hasil scan.")
		return
	}
	rows := summaryRows(results)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ringkasan Scan")

	if noColor {
		writeSimpleTable(w, rows)
		return
	}

	t := table.New().
		Headers(summaryHeaders...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(results) {
				return base
			}
			switch col {
			case 0:
				return base.Foreground(lipgloss.Color("51"))
			case 1:
				return base.Foreground(statusTone(results[row].Status))
			case 2:
				return base.Foreground(riskTone(results[row].RiskLevel))
			}
			return base.Foreground(lipgloss.Color("250"))
		})

	for _, row := range rows {
		t.Row(row...)
	}

	fmt.Fprintln(w, t.Render())
}

func statusTone(s model.ScanStatus) lipgloss.Color {
	switch s {
	case model.StatusClean:
		return lipgloss.Color("42")
	case model.StatusSuspicious:
		return lipgloss.Color("220")
	case model.StatusInfected:
		return lipgloss.Color("196")
	}
	return lipgloss.Color("244")
}

func riskTone(r model.RiskLevel) lipgloss.Color {
	switch r {
	case model.RiskLow:
		return lipgloss.Color("42")
	case model.RiskMedium:
		return lipgloss.Color("220")
	case model.RiskHigh, model.RiskCritical:
		return lipgloss.Color("196")
	}
	return lipgloss.Color("244")
}

func writeSimpleTable(w io.Writer, rows [][]string) {
	widths := make([]int, len(summaryHeaders))
	for i, h := range summaryHeaders {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, h := range summaryHeaders {
		if i > 0 {
			fmt.Fprint(w, " | ")
		}
		fmt.Fprintf(w, "%-*s", widths[i], h)
	}
	fmt.Fprintln(w)

	for i, width := range widths {
		if i > 0 {
			fmt.Fprint(w, "-+-")
		}
		fmt.Fprint(w, strings.Repeat("-", width))
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, " | ")
			}
			fmt.Fprintf(w, "%-*s", widths[i], cell)
		}
		fmt.Fprintln(w)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// ─── Export ────────────────────────────────────────────────────────────

// WriteJSON saves results as an indented JSON array.
func WriteJSON(path string, results []*model.ScanResult) error {
	if results == nil {
		results = []*model.ScanResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
