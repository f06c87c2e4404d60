package app

import (
	"context"
	"testing"
	"time"

	"github.com/raysh454/judolhunter/internal/model"
	"github.com/raysh454/judolhunter/internal/testutil"
)

func TestApplication_PersistsFinishedScans(t *testing.T) {
	t.Parallel()
	ts := cloakingServer(t, infectedPage, cleanPage)

	cfg := DefaultConfig()
	cfg.StorageRoot = t.TempDir()
	cfg.Quota.RateEvery = 0

	a, err := NewApplication(cfg, &testutil.DummyLogger{}, AppOptions{Persist: true})
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	if a.Store == nil || a.Quota == nil {
		t.Fatal("persistent application without store or quota")
	}

	handles, err := a.Orch.Submit(context.Background(), []string{ts.URL}, false, "sess-1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := a.Orch.Wait(ctx, handles[0].ScanID)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}

	saved, err := a.Store.Get(ctx, "sess-1", res.ScanID)
	if err != nil {
		t.Fatalf("Store.Get: %v", err)
	}
	if saved.Status != model.StatusInfected || saved.RiskLevel != res.RiskLevel {
		t.Errorf("saved %s/%s, orchestrator %s/%s", saved.Status, saved.RiskLevel, res.Status, res.RiskLevel)
	}

	usage, err := a.Quota.Usage(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if len(usage) != 1 || usage[0].Domain != "127.0.0.1" {
		t.Errorf("usage = %+v", usage)
	}

	if l, ok := a.Progress.Get(res.ScanID); !ok || !l.Done() {
		t.Error("progress hub has no finished log for the scan")
	}
}

func TestApplication_InMemory(t *testing.T) {
	t.Parallel()
	ts := cloakingServer(t, cleanPage, cleanPage)

	a, err := NewApplication(DefaultConfig(), nil, AppOptions{})
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	if a.Store != nil || a.Quota != nil {
		t.Fatal("in-memory application opened storage")
	}

	handles, err := a.Orch.Submit(context.Background(), []string{ts.URL}, false, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := a.Orch.Wait(ctx, handles[0].ScanID)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if res.Status != model.StatusClean {
		t.Errorf("status = %s", res.Status)
	}
}

func TestApplication_BadPatternsPath(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.PatternsPath = t.TempDir() + "/missing.json"
	if _, err := NewApplication(cfg, nil, AppOptions{}); err == nil {
		t.Fatal("expected error for missing pattern file")
	}
}
