// Package prefstore holds the in-memory dashboard configuration. It is the
// single source of truth every other component reads from; all writes funnel
// through its mutation methods. Mutations are synchronous, local, and never
// fail — side effects on the gateway are the caller's responsibility.
package prefstore

import (
	"sync"
	"time"

	"github.com/GregMSThompson/dashboard-engine/internal/models"
)

// Snapshot is a point-in-time copy of the store, safe to mutate.
type Snapshot struct {
	Widgets        []models.WidgetInstance
	Layout         []models.LayoutCell
	Preferences    *models.DashboardPreference
	HasPreferences bool
	EditMode       bool
	SyncStatus     models.SyncStatus
}

// Store coordinates access to the current dashboard configuration.
type Store struct {
	mu          sync.RWMutex
	widgets     []models.WidgetInstance
	layout      []models.LayoutCell
	preferences *models.DashboardPreference
	editMode    bool
	syncStatus  models.SyncStatus
}

func New() *Store {
	return &Store{syncStatus: models.SyncSynced}
}

// SetPreferences replaces widgets and layout wholesale with the given
// preference document. Used after the initial load and after every
// reconciliation re-fetch; the shape is accepted as-is and drift filtering
// is left to the render path.
func (s *Store) SetPreferences(pref models.DashboardPreference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := pref.Clone()
	s.preferences = &clone
	s.widgets = models.CloneWidgets(pref.Widgets)
	s.layout = models.CloneLayout(pref.Layout)
	s.syncStatus = pref.SyncStatus
	if s.syncStatus == "" {
		s.syncStatus = models.SyncSynced
	}
}

// AddWidget appends a widget instance. It does not create a layout cell;
// callers coordinate the matching SaveLayout call themselves.
func (s *Store) AddWidget(w models.WidgetInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.widgets = append(s.widgets, w)
	if s.preferences != nil {
		s.preferences.Widgets = append(s.preferences.Widgets, w)
		s.preferences.UpdatedAt = time.Now()
	}
}

// RemoveWidget removes the widget and its layout cell in one call.
func (s *Store) RemoveWidget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.widgets = removeWidgetByID(s.widgets, id)
	s.layout = removeCellByID(s.layout, id)
	if s.preferences != nil {
		s.preferences.Widgets = removeWidgetByID(s.preferences.Widgets, id)
		s.preferences.Layout = removeCellByID(s.preferences.Layout, id)
		s.preferences.UpdatedAt = time.Now()
	}
}

// UpdateWidgetSettings shallow-merges the given settings into the widget's
// existing settings. No-op when the id is unknown.
func (s *Store) UpdateWidgetSettings(id string, settings models.WidgetSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mergeSettings(s.widgets, id, settings)
	if s.preferences != nil {
		mergeSettings(s.preferences.Widgets, id, settings)
		s.preferences.UpdatedAt = time.Now()
	}
}

// UpdateWidgetHeight rewrites the matching cell's height in the working
// layout and the nested preference copy. Bounds are not validated here;
// height clamping belongs to the caller.
func (s *Store) UpdateWidgetHeight(id string, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	setCellHeight(s.layout, id, height)
	if s.preferences != nil {
		setCellHeight(s.preferences.Layout, id, height)
		s.preferences.UpdatedAt = time.Now()
	}
}

// SaveLayout wholesale-replaces the layout.
func (s *Store) SaveLayout(layout []models.LayoutCell) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = models.CloneLayout(layout)
	if s.preferences != nil {
		s.preferences.Layout = models.CloneLayout(layout)
		s.preferences.UpdatedAt = time.Now()
	}
}

// ToggleEditMode flips the edit-mode flag and returns the new value.
func (s *Store) ToggleEditMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editMode = !s.editMode
	return s.editMode
}

// ResetToDefaults replaces everything with a server-supplied default
// configuration.
func (s *Store) ResetToDefaults(pref models.DashboardPreference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := pref.Clone()
	s.preferences = &clone
	s.widgets = models.CloneWidgets(pref.Widgets)
	s.layout = models.CloneLayout(pref.Layout)
	s.editMode = false
	s.syncStatus = models.SyncSynced
}

// SetSyncStatus records how the local copy relates to the gateway's.
func (s *Store) SetSyncStatus(status models.SyncStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncStatus = status
	if s.preferences != nil {
		s.preferences.SyncStatus = status
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Widgets:    models.CloneWidgets(s.widgets),
		Layout:     models.CloneLayout(s.layout),
		EditMode:   s.editMode,
		SyncStatus: s.syncStatus,
	}
	if s.preferences != nil {
		clone := s.preferences.Clone()
		snap.Preferences = &clone
		snap.HasPreferences = true
	}
	return snap
}

// --- Helpers ---

func removeWidgetByID(widgets []models.WidgetInstance, id string) []models.WidgetInstance {
	out := widgets[:0]
	for _, w := range widgets {
		if w.ID != id {
			out = append(out, w)
		}
	}
	return out
}

func removeCellByID(layout []models.LayoutCell, id string) []models.LayoutCell {
	out := layout[:0]
	for _, c := range layout {
		if c.I != id {
			out = append(out, c)
		}
	}
	return out
}

func mergeSettings(widgets []models.WidgetInstance, id string, settings models.WidgetSettings) {
	for i := range widgets {
		if widgets[i].ID == id {
			widgets[i].Settings = widgets[i].Settings.Merge(settings)
			return
		}
	}
}

func setCellHeight(layout []models.LayoutCell, id string, height int) {
	for i := range layout {
		if layout[i].I == id {
			layout[i].H = height
			return
		}
	}
}
