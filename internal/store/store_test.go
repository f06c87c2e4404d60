package store_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/raysh454/judolhunter/internal/model"
	"github.com/raysh454/judolhunter/internal/store"
	"github.com/raysh454/judolhunter/internal/testutil"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s, err := store.New(db, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return s
}

func result(id, parent, url string, started time.Time) *model.ScanResult {
	return &model.ScanResult{
		ScanID:    id,
		ParentID:  parent,
		URL:       url,
		Status:    model.StatusInfected,
		RiskLevel: model.RiskCritical,
		Issues:    []string{"cloaking", "gambling_keywords"},
		Findings: model.Findings{
			Cloaking: &model.CloakingFinding{Detected: true, Similarity: 0.1, Evidence: []string{"different"}},
			Keywords: &model.KeywordFinding{Detected: true, Count: 5, Evidence: []string{"slot gacor"}},
		},
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	if err := s.Save(ctx, "actor-1", result("scan-1", "", "https://www.a.test/", now)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "actor-1", "scan-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != model.StatusInfected || got.RiskLevel != model.RiskCritical {
		t.Errorf("unexpected status %s/%s", got.Status, got.RiskLevel)
	}
	if !got.Findings.Cloaking.IsDetected() || got.Findings.Keywords.Count != 5 {
		t.Errorf("findings not round-tripped: %+v", got.Findings)
	}
	if got.Findings.Links != nil {
		t.Errorf("expected nil links finding, got %+v", got.Findings.Links)
	}

	if _, err := s.Get(ctx, "actor-2", "scan-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for another actor, got %v", err)
	}
	if _, err := s.Get(ctx, "", "scan-1"); err != nil {
		t.Errorf("unscoped Get: %v", err)
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()
	r := result("scan-1", "", "https://a.test/", time.Now())
	if err := s.Save(ctx, "a", r); err != nil {
		t.Fatalf("Save: %v", err)
	}
	r.Status = model.StatusClean
	r.RiskLevel = model.RiskLow
	if err := s.Save(ctx, "a", r); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	list, err := s.List(ctx, "a", 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Status != model.StatusClean {
		t.Fatalf("expected single replaced row, got %+v", list)
	}
}

func TestStore_ListNewestFirstTopLevelOnly(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mustSave := func(r *model.ScanResult) {
		t.Helper()
		if err := s.Save(ctx, "a", r); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	mustSave(result("old", "", "https://old.test/", base))
	mustSave(result("new", "", "https://www.new.test/", base.Add(time.Hour)))
	mustSave(result("child", "new", "https://www.new.test/p", base.Add(2*time.Hour)))

	list, err := s.List(ctx, "a", 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 top-level scans, got %d", len(list))
	}
	if list[0].ID != "new" || list[1].ID != "old" {
		t.Errorf("unexpected order %s, %s", list[0].ID, list[1].ID)
	}
	if list[0].Domain != "new.test" || list[0].Issues != 2 {
		t.Errorf("unexpected summary %+v", list[0])
	}

	page, err := s.List(ctx, "a", 1, 1)
	if err != nil || len(page) != 1 || page[0].ID != "old" {
		t.Errorf("pagination failed: %+v, %v", page, err)
	}
}

func TestStore_DeleteRemovesChildren(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	for _, r := range []*model.ScanResult{
		result("root", "", "https://a.test/", now),
		result("c1", "root", "https://a.test/1", now),
	} {
		if err := s.Save(ctx, "a", r); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	if err := s.Delete(ctx, "b", "root"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign actor, got %v", err)
	}
	if err := s.Delete(ctx, "a", "root"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "a", "c1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("child should be deleted, got %v", err)
	}
}

func TestStore_SaveRequiresID(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	if err := s.Save(context.Background(), "a", &model.ScanResult{}); err == nil {
		t.Error("expected error for result without id")
	}
}
