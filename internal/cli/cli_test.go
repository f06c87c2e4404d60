package cli

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/judolhunter/internal/model"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func cloakedSite(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if strings.Contains(r.UserAgent(), "Googlebot") {
			_, _ = io.WriteString(w, `<html><head><title>SLOT GACOR MAXWIN</title></head><body>
<h1>slot gacor hari ini</h1><p>slot gacor slot gacor daftar sekarang dan menangkan jackpot togel online</p></body></html>`)
			return
		}
		_, _ = io.WriteString(w, `<html><head><title>Koperasi Sejahtera</title></head><body>
<h1>Koperasi Sejahtera</h1><p>Kami melayani simpanan, pinjaman dan pelatihan usaha kecil untuk anggota.</p></body></html>`)
	}))
	t.Cleanup(ts.Close)
	return ts
}

// ─── Targets ───────────────────────────────────────────────────────────

func TestGatherTargets(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(file, []byte("# daftar\nsekolah.sch.id\n\n  desa.id  \n"), 0o644))

	got, err := gatherTargets([]string{"https://a.test", " "}, file, strings.NewReader("piped.test\n#skip\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.test", "sekolah.sch.id", "desa.id", "piped.test"}, got)
}

func TestGatherTargets_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := gatherTargets(nil, filepath.Join(t.TempDir(), "nope.txt"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tidak ditemukan")
}

// ─── Output ────────────────────────────────────────────────────────────

func sampleResults() []*model.ScanResult {
	return []*model.ScanResult{
		{URL: "https://desa.id/", Status: model.StatusInfected, RiskLevel: model.RiskCritical, Issues: []string{"cloaking", "gambling_keywords"}},
		{URL: "https://sekolah.sch.id/", Status: model.StatusClean, RiskLevel: model.RiskLow},
		{URL: "https://mati.test/", Status: model.StatusError, RiskLevel: model.RiskLow, Error: "dial tcp: no such host"},
	}
}

func TestWriteTable_Plain(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	WriteTable(&buf, sampleResults(), true)

	out := buf.String()
	assert.Contains(t, out, "Ringkasan Scan")
	assert.Contains(t, out, "URL")
	assert.Contains(t, out, "INFECTED")
	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, "cloaking, gambling_keywords")
	assert.Contains(t, out, "UNKNOWN")
	assert.Equal(t, 2+2+3, strings.Count(out, "\n"))
}

func TestWriteTable_Styled(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	WriteTable(&buf, sampleResults(), false)
	assert.Contains(t, buf.String(), "sekolah.sch.id")
	assert.Contains(t, buf.String(), "╭")
}

func TestWriteTable_Empty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	WriteTable(&buf, nil, true)
	assert.Contains(t, buf.String(), "Tidak ada hasil")
}

func TestWriteReport(t *testing.T) {
	t.Parallel()
	res := &model.ScanResult{
		URL:       "https://desa.id/",
		Status:    model.StatusInfected,
		RiskLevel: model.RiskCritical,
		Findings: model.Findings{
			Cloaking: &model.CloakingFinding{Detected: true, Similarity: 0.12, Evidence: []string{"similarity 12%"}},
			Keywords: &model.KeywordFinding{Detected: true, Count: 1, Matches: []model.KeywordMatch{{Keyword: "slot gacor", Count: 4}}},
			Hidden:   &model.HiddenFinding{},
		},
		FetchInfo: model.FetchInfo{Browser: model.FetchMeta{Error: "timeout"}},
	}
	var buf bytes.Buffer
	WriteReport(&buf, res)

	out := buf.String()
	assert.Contains(t, out, "Status: INFECTED  |  Risk: CRITICAL")
	assert.Contains(t, out, "CLOAKING TERDETEKSI")
	assert.Contains(t, out, `"slot gacor" (4x)`)
	assert.Contains(t, out, "browser error: timeout")
	assert.NotContains(t, out, "elemen tersembunyi")
}

func TestPrinter_FiltersWithoutVerbose(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	p.Notify("0123456789", model.ProgressEvent{Kind: model.EventProgress, Message: "Fetching..."})
	p.Notify("0123456789", model.ProgressEvent{Kind: model.EventProgress, Message: "verdict", Data: map[string]any{"result": 1}})
	p.Notify("0123456789", model.ProgressEvent{Kind: model.EventComplete, Message: "done", Data: map[string]any{"result": 1}})
	p.Notify("0123456789", model.ProgressEvent{Kind: model.EventError, Message: "gagal"})

	assert.Equal(t, "[01234567] verdict\n[01234567] gagal\n", buf.String())

	buf.Reset()
	NewPrinter(&buf, true).Notify("abc", model.ProgressEvent{Kind: model.EventStatus, Message: "start"})
	assert.Equal(t, "[abc] start\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "hasil.json")
	require.NoError(t, WriteJSON(path, sampleResults()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "infected", decoded[0]["status"])
}

// ─── Commands ──────────────────────────────────────────────────────────

func TestScanCommand_EndToEnd(t *testing.T) {
	site := cloakedSite(t)
	out := filepath.Join(t.TempDir(), "hasil.json")

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{"scan", site.URL, "-o", out, "--no-color", "--storage", t.TempDir()})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "INFECTED")
	assert.Contains(t, stdout.String(), "Hasil disimpan ke "+out)
	assert.Contains(t, stderr.String(), "Total URL: 1")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var results []model.ScanResult
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 1)
	assert.Equal(t, model.StatusInfected, results[0].Status)
}

func TestScanCommand_NoTargets(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{"scan", "-q"})

	err := cmd.Execute()
	assert.True(t, errors.Is(err, ErrNoTargets))
}

func TestScanCommand_OnlyInvalidURLs(t *testing.T) {
	cmd := NewRootCmd()
	var stderr bytes.Buffer
	cmd.SetOut(io.Discard)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{"scan", "-q", "ftp://x.test"})

	require.Error(t, cmd.Execute())
	assert.Contains(t, stderr.String(), "ftp://x.test")
}
