package prefstore

import (
	"testing"
	"time"

	"github.com/GregMSThompson/dashboard-engine/internal/models"
	"github.com/GregMSThompson/dashboard-engine/pkg/helpers"
)

func samplePreference() models.DashboardPreference {
	return models.DashboardPreference{
		ID:     "pref1",
		UserID: "uid1",
		Widgets: []models.WidgetInstance{
			{ID: "w1", Type: "totalBalance"},
			{ID: "w2", Type: "accountList"},
		},
		Layout: []models.LayoutCell{
			{I: "w1", X: 0, Y: 0, W: 1, H: 2},
			{I: "w2", X: 1, Y: 0, W: 1, H: 3},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestSetPreferences_ReplacesWholesale(t *testing.T) {
	s := New()
	s.SetPreferences(samplePreference())

	snap := s.Snapshot()
	if !snap.HasPreferences {
		t.Fatal("expected preferences to be set")
	}
	if len(snap.Widgets) != 2 || len(snap.Layout) != 2 {
		t.Fatalf("unexpected state: %d widgets, %d cells", len(snap.Widgets), len(snap.Layout))
	}
	if snap.SyncStatus != models.SyncSynced {
		t.Errorf("expected synced status after set, got %s", snap.SyncStatus)
	}
}

func TestRemoveWidget_RemovesFromBothSets(t *testing.T) {
	s := New()
	s.SetPreferences(samplePreference())

	s.RemoveWidget("w1")

	snap := s.Snapshot()
	for _, w := range snap.Widgets {
		if w.ID == "w1" {
			t.Error("widget w1 still present after removal")
		}
	}
	for _, c := range snap.Layout {
		if c.I == "w1" {
			t.Error("layout cell w1 still present after removal")
		}
	}
	for _, w := range snap.Preferences.Widgets {
		if w.ID == "w1" {
			t.Error("nested preference widget w1 still present after removal")
		}
	}
	if len(snap.Widgets) != 1 || len(snap.Layout) != 1 {
		t.Fatalf("expected one entry left, got %d widgets, %d cells", len(snap.Widgets), len(snap.Layout))
	}
}

func TestRemoveWidget_UnknownIDIsNoop(t *testing.T) {
	s := New()
	s.SetPreferences(samplePreference())

	s.RemoveWidget("nope")

	snap := s.Snapshot()
	if len(snap.Widgets) != 2 || len(snap.Layout) != 2 {
		t.Fatalf("no-op removal changed state: %d widgets, %d cells", len(snap.Widgets), len(snap.Layout))
	}
}

func TestUpdateWidgetHeight_Idempotent(t *testing.T) {
	s := New()
	s.SetPreferences(samplePreference())

	s.UpdateWidgetHeight("w2", 5)
	first := s.Snapshot()
	s.UpdateWidgetHeight("w2", 5)
	second := s.Snapshot()

	if len(first.Layout) != len(second.Layout) {
		t.Fatalf("layout length changed: %d vs %d", len(first.Layout), len(second.Layout))
	}
	for i := range first.Layout {
		if first.Layout[i] != second.Layout[i] {
			t.Errorf("cell %d changed on repeated update: %+v vs %+v", i, first.Layout[i], second.Layout[i])
		}
	}
	for _, c := range second.Layout {
		if c.I == "w2" && c.H != 5 {
			t.Errorf("expected height 5, got %d", c.H)
		}
	}
}

func TestUpdateWidgetHeight_UpdatesNestedCopy(t *testing.T) {
	s := New()
	s.SetPreferences(samplePreference())
	before := s.Snapshot().Preferences.UpdatedAt

	s.UpdateWidgetHeight("w1", 4)

	snap := s.Snapshot()
	for _, c := range snap.Preferences.Layout {
		if c.I == "w1" && c.H != 4 {
			t.Errorf("nested preference layout not updated: h=%d", c.H)
		}
	}
	if !snap.Preferences.UpdatedAt.After(before) {
		t.Error("expected UpdatedAt to be bumped")
	}
}

func TestUpdateWidgetSettings_ShallowMerge(t *testing.T) {
	s := New()
	pref := samplePreference()
	pref.Widgets[0].Settings = models.WidgetSettings{Months: 6, GroupID: "g1"}
	s.SetPreferences(pref)

	s.UpdateWidgetSettings("w1", models.WidgetSettings{Months: 12})

	snap := s.Snapshot()
	got := snap.Widgets[0].Settings
	if got.Months != 12 {
		t.Errorf("expected months overwritten to 12, got %d", got.Months)
	}
	if got.GroupID != "g1" {
		t.Errorf("expected untouched groupId to survive merge, got %q", got.GroupID)
	}
}

func TestUpdateWidgetSettings_UnknownIDIsNoop(t *testing.T) {
	s := New()
	s.SetPreferences(samplePreference())

	s.UpdateWidgetSettings("nope", models.WidgetSettings{Months: 3})

	snap := s.Snapshot()
	for _, w := range snap.Widgets {
		if w.Settings.Months != 0 {
			t.Errorf("settings of %s changed by no-op update", w.ID)
		}
	}
}

func TestSaveLayout_ReplacesAndBumpsUpdatedAt(t *testing.T) {
	s := New()
	s.SetPreferences(samplePreference())
	before := s.Snapshot().Preferences.UpdatedAt

	s.SaveLayout([]models.LayoutCell{{I: "w1", X: 2, Y: 1, W: 2, H: 2}})

	snap := s.Snapshot()
	if len(snap.Layout) != 1 || snap.Layout[0].X != 2 {
		t.Fatalf("layout not replaced: %+v", snap.Layout)
	}
	if !snap.Preferences.UpdatedAt.After(before) {
		t.Error("expected UpdatedAt to be bumped")
	}
}

func TestToggleEditMode(t *testing.T) {
	s := New()
	if s.Snapshot().EditMode {
		t.Fatal("expected edit mode off initially")
	}
	if !s.ToggleEditMode() {
		t.Error("expected toggle to return true")
	}
	if s.ToggleEditMode() {
		t.Error("expected second toggle to return false")
	}
}

func TestResetToDefaults_ClearsEditModeAndStatus(t *testing.T) {
	s := New()
	s.SetPreferences(samplePreference())
	s.ToggleEditMode()
	s.SetSyncStatus(models.SyncError)

	fresh := models.DashboardPreference{
		ID:      "pref2",
		UserID:  "uid1",
		Widgets: []models.WidgetInstance{{ID: "w9", Type: "budgetOverview"}},
		Layout:  []models.LayoutCell{{I: "w9", W: 2, H: 3, MinH: helpers.Ptr(2)}},
	}
	s.ResetToDefaults(fresh)

	snap := s.Snapshot()
	if snap.EditMode {
		t.Error("expected edit mode cleared on reset")
	}
	if snap.SyncStatus != models.SyncSynced {
		t.Errorf("expected synced status after reset, got %s", snap.SyncStatus)
	}
	if len(snap.Widgets) != 1 || snap.Widgets[0].ID != "w9" {
		t.Fatalf("unexpected widgets after reset: %+v", snap.Widgets)
	}
}

func TestSnapshot_IsolatedFromStore(t *testing.T) {
	s := New()
	s.SetPreferences(samplePreference())

	snap := s.Snapshot()
	snap.Layout[0].H = 99
	snap.Widgets[0].Type = "mutated"

	again := s.Snapshot()
	if again.Layout[0].H == 99 {
		t.Error("mutating a snapshot leaked into the store layout")
	}
	if again.Widgets[0].Type == "mutated" {
		t.Error("mutating a snapshot leaked into the store widgets")
	}
}
