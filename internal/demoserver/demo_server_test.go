package demoserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/judolhunter/internal/app"
	"github.com/raysh454/judolhunter/internal/fetcher"
	"github.com/raysh454/judolhunter/internal/model"
	"github.com/raysh454/judolhunter/internal/testutil"
)

func newTestSite(t *testing.T, cfg Config) (*DemoServer, *httptest.Server) {
	t.Helper()
	ds := New(cfg, &testutil.DummyLogger{})
	ts := httptest.NewServer(ds.Handler())
	t.Cleanup(ts.Close)
	return ds, ts
}

func get(t *testing.T, rawURL, userAgent string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestIsCrawler(t *testing.T) {
	t.Parallel()
	cases := map[string]bool{
		fetcher.GooglebotUserAgent: true,
		fetcher.BrowserUserAgent:   false,
		"Mozilla/5.0 (compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm)": true,
		"curl/8.4.0": false,
	}
	for ua, want := range cases {
		if got := IsCrawler(ua); got != want {
			t.Errorf("IsCrawler(%q) = %v, want %v", ua, got, want)
		}
	}
}

func TestPageHandler_ServesInjectedVariantToCrawlers(t *testing.T) {
	t.Parallel()
	_, ts := newTestSite(t, DefaultConfig())

	_, crawler := get(t, ts.URL+"/", fetcher.GooglebotUserAgent)
	_, browser := get(t, ts.URL+"/", fetcher.BrowserUserAgent)

	if !strings.Contains(crawler, "Slot Gacor") {
		t.Error("crawler did not get the injected home page")
	}
	if strings.Contains(strings.ToLower(browser), "slot") {
		t.Error("browser got gambling content")
	}
}

func TestPageHandler_DoorwayOnlyExistsForCrawlers(t *testing.T) {
	t.Parallel()
	_, ts := newTestSite(t, DefaultConfig())

	code, _ := get(t, ts.URL+"/pengumuman/slot-gacor", fetcher.GooglebotUserAgent)
	if code != http.StatusOK {
		t.Errorf("crawler status = %d, want 200", code)
	}
	code, _ = get(t, ts.URL+"/pengumuman/slot-gacor", fetcher.BrowserUserAgent)
	if code != http.StatusNotFound {
		t.Errorf("browser status = %d, want 404", code)
	}
}

func TestPageHandler_CloakingOff(t *testing.T) {
	t.Parallel()
	_, ts := newTestSite(t, Config{Port: 0, Cloaked: false})

	_, crawler := get(t, ts.URL+"/", fetcher.GooglebotUserAgent)
	_, browser := get(t, ts.URL+"/", fetcher.BrowserUserAgent)
	if crawler != browser {
		t.Error("pages differ with cloaking off")
	}
}

func TestSetCloaking(t *testing.T) {
	t.Parallel()
	ds, ts := newTestSite(t, DefaultConfig())

	post := func(form url.Values) int {
		resp, err := http.PostForm(ts.URL+"/demo/set-cloaking", form)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := post(url.Values{"path": {"/"}, "on": {"false"}}); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	_, crawler := get(t, ts.URL+"/", fetcher.GooglebotUserAgent)
	if strings.Contains(crawler, "Slot Gacor") {
		t.Error("crawler still gets the injected page")
	}

	if code := post(url.Values{"path": {"/berita"}, "on": {"true"}}); code != http.StatusBadRequest {
		t.Errorf("page without injected variant: expected 400, got %d", code)
	}
	if code := post(url.Values{"path": {"/nope"}, "on": {"true"}}); code != http.StatusNotFound {
		t.Errorf("unknown page: expected 404, got %d", code)
	}
	if code := post(url.Values{"path": {"/"}, "on": {"maybe"}}); code != http.StatusBadRequest {
		t.Errorf("bad flag: expected 400, got %d", code)
	}

	for _, st := range ds.state() {
		if st.Path == "/ppdb" && !st.Cloaked {
			t.Error("other pages changed")
		}
	}
}

func TestStateAndReset(t *testing.T) {
	t.Parallel()
	ds, ts := newTestSite(t, DefaultConfig())
	ds.setAll(false)

	resp, err := http.Post(ts.URL+"/demo/reset", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/demo/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var states []PageState
	if err := json.NewDecoder(resp.Body).Decode(&states); err != nil {
		t.Fatal(err)
	}
	if len(states) != len(GetAllPages()) {
		t.Fatalf("got %d pages", len(states))
	}
	for _, st := range states {
		if st.Cloaked != st.Cloakable {
			t.Errorf("%s: cloaked=%v cloakable=%v after reset", st.Path, st.Cloaked, st.Cloakable)
		}
	}
}

func TestControlPanelRenders(t *testing.T) {
	t.Parallel()
	_, ts := newTestSite(t, DefaultConfig())

	code, body := get(t, ts.URL+"/demo/control", fetcher.BrowserUserAgent)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(body, "/pengumuman/slot-gacor") {
		t.Error("control panel does not list the doorway page")
	}
}

// The demo site is what the scanner is meant to catch.
func TestScannerFlagsDemoSite(t *testing.T) {
	t.Parallel()
	_, ts := newTestSite(t, DefaultConfig())

	a, err := app.NewApplication(app.DefaultConfig(), &testutil.DummyLogger{}, app.AppOptions{})
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	handles, err := a.Orch.Submit(context.Background(), []string{ts.URL + "/", ts.URL + "/berita"}, false, "demo")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	want := []model.ScanStatus{model.StatusInfected, model.StatusClean}
	for i, h := range handles {
		res, err := a.Orch.Wait(ctx, h.ScanID)
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
		if res.Status != want[i] {
			t.Errorf("%s: status = %s, want %s", h.URL, res.Status, want[i])
		}
	}
}
