package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/GregMSThompson/dashboard-engine/internal/models"
)

func openTestMirror(t *testing.T) *Mirror {
	t.Helper()
	m, err := Open(context.Background(), filepath.Join(t.TempDir(), "mirror.sqlite"))
	if err != nil {
		t.Fatalf("open mirror: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func samplePreference(userID string) models.DashboardPreference {
	return models.DashboardPreference{
		ID:     "pref1",
		UserID: userID,
		Widgets: []models.WidgetInstance{
			{ID: "w1", Type: "totalBalance"},
		},
		Layout: []models.LayoutCell{
			{I: "w1", X: 0, Y: 0, W: 1, H: 2},
		},
	}
}

func TestMirrorRoundTrip(t *testing.T) {
	m := openTestMirror(t)
	ctx := context.Background()

	if err := m.Store(ctx, samplePreference("uid1")); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, found, err := m.Load(ctx, "uid1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found {
		t.Fatal("expected stored entry to be found")
	}
	if got.ID != "pref1" || got.UserID != "uid1" {
		t.Errorf("document not round-tripped: %+v", got)
	}
	if len(got.Widgets) != 1 || got.Widgets[0].ID != "w1" {
		t.Errorf("widgets not round-tripped: %+v", got.Widgets)
	}
	if len(got.Layout) != 1 || got.Layout[0].H != 2 {
		t.Errorf("layout not round-tripped: %+v", got.Layout)
	}
}

func TestMirrorLoadMissingUser(t *testing.T) {
	m := openTestMirror(t)

	_, found, err := m.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Fatal("expected missing entry to report not found")
	}
}

func TestMirrorStoreUpserts(t *testing.T) {
	m := openTestMirror(t)
	ctx := context.Background()

	first := samplePreference("uid1")
	if err := m.Store(ctx, first); err != nil {
		t.Fatalf("store: %v", err)
	}

	second := first
	second.Widgets = append(second.Widgets, models.WidgetInstance{ID: "w2", Type: "accountList"})
	if err := m.Store(ctx, second); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, found, err := m.Load(ctx, "uid1")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if len(got.Widgets) != 2 {
		t.Errorf("expected upsert to replace the row, got %d widgets", len(got.Widgets))
	}
}

func TestMirrorDelete(t *testing.T) {
	m := openTestMirror(t)
	ctx := context.Background()

	if err := m.Store(ctx, samplePreference("uid1")); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := m.Delete(ctx, "uid1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, found, err := m.Load(ctx, "uid1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Fatal("expected deleted entry to be gone")
	}
}

func TestMirrorIsolatesUsers(t *testing.T) {
	m := openTestMirror(t)
	ctx := context.Background()

	if err := m.Store(ctx, samplePreference("uid1")); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := m.Store(ctx, samplePreference("uid2")); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := m.Delete(ctx, "uid1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, found, err := m.Load(ctx, "uid2")
	if err != nil || !found {
		t.Fatalf("expected uid2 entry to survive, found=%v err=%v", found, err)
	}
}

func TestMirrorOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mirror.sqlite")
	ctx := context.Background()

	m1, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := m1.Store(ctx, samplePreference("uid1")); err != nil {
		t.Fatalf("store: %v", err)
	}
	_ = m1.Close()

	m2, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer func() { _ = m2.Close() }()

	_, found, err := m2.Load(ctx, "uid1")
	if err != nil || !found {
		t.Fatalf("expected entry to survive reopen, found=%v err=%v", found, err)
	}
}
