package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/GregMSThompson/dashboard-engine/internal/dto"
	"github.com/GregMSThompson/dashboard-engine/internal/errs"
	"github.com/GregMSThompson/dashboard-engine/internal/grid"
	"github.com/GregMSThompson/dashboard-engine/internal/models"
	"github.com/GregMSThompson/dashboard-engine/internal/prefstore"
	"github.com/GregMSThompson/dashboard-engine/internal/registry"
	"github.com/GregMSThompson/dashboard-engine/pkg/logger"
)

// preferenceGateway is the upstream API boundary for persisted preferences.
type preferenceGateway interface {
	GetPreferences(ctx context.Context) (models.DashboardPreference, error)
	SavePreferences(ctx context.Context, widgets []models.WidgetInstance, layout []models.LayoutCell) (models.DashboardPreference, error)
	UpdateLayout(ctx context.Context, layout []models.LayoutCell) error
	ResetToDefaults(ctx context.Context) (models.DashboardPreference, error)
}

// preferenceMirror is the local persisted copy used for
// stale-while-revalidate hydration.
type preferenceMirror interface {
	Load(ctx context.Context, userID string) (models.DashboardPreference, bool, error)
	Store(ctx context.Context, pref models.DashboardPreference) error
}

// layoutSyncer debounces remote layout writes.
type layoutSyncer interface {
	Schedule(ctx context.Context, layout []models.LayoutCell)
	Flush()
	IsSaving() bool
}

type dashboardService struct {
	store   *prefstore.Store
	gateway preferenceGateway
	mirror  preferenceMirror // nil when the mirror failed to open
	syncer  layoutSyncer
	params  grid.Params
}

func NewDashboardService(store *prefstore.Store, gw preferenceGateway, mirror preferenceMirror, sc layoutSyncer) *dashboardService {
	return &dashboardService{
		store:   store,
		gateway: gw,
		mirror:  mirror,
		syncer:  sc,
		params:  grid.DefaultParams(),
	}
}

// --- Hydration ---

// Hydrate loads the dashboard configuration: the local mirror is applied
// first so the dashboard renders immediately, then the gateway's copy
// overwrites it. A gateway failure is fatal only when there is no mirror to
// fall back on.
func (s *dashboardService) Hydrate(ctx context.Context, uid string) (prefstore.Snapshot, error) {
	log := logger.FromContext(ctx)

	warm := false
	if s.mirror != nil {
		stale, found, err := s.mirror.Load(ctx, uid)
		if err != nil {
			log.Warn("preference mirror load failed", "error", err)
		} else if found {
			s.store.SetPreferences(stale)
			warm = true
		}
	}

	pref, err := s.gateway.GetPreferences(ctx)
	if err != nil {
		if !warm {
			return prefstore.Snapshot{}, err
		}
		// Stale mirror keeps the dashboard usable; the next successful save
		// or reload reconciles.
		log.Warn("preference fetch failed, serving mirror", "error", err)
		s.store.SetSyncStatus(models.SyncError)
		return s.store.Snapshot(), nil
	}

	s.store.SetPreferences(pref)
	s.refreshMirror(ctx, pref)
	return s.store.Snapshot(), nil
}

// --- Rendering ---

// Render returns the drift-filtered view: widgets joined with their cells,
// unmatched entries skipped with a diagnostic. A failed save or persisted
// drift must never crash this path.
func (s *dashboardService) Render(ctx context.Context) dto.RenderResponse {
	log := logger.FromContext(ctx)
	snap := s.store.Snapshot()

	widgets, layout := grid.FilterRenderable(snap.Widgets, snap.Layout, log)
	rendered := make([]dto.RenderedWidget, 0, len(widgets))
	for i, w := range widgets {
		if _, ok := registry.Get(w.Type); !ok {
			log.Warn("skipping widget with unknown type", "widget_id", w.ID, "type", w.Type)
			continue
		}
		cell := layout[i]
		rendered = append(rendered, dto.RenderedWidget{
			Widget:     w,
			Cell:       cell,
			GridWidth:  cell.W,
			GridHeight: cell.H,
		})
	}
	return dto.RenderResponse{
		Widgets:    rendered,
		EditMode:   snap.EditMode,
		SyncStatus: snap.SyncStatus,
	}
}

func (s *dashboardService) GetPreferences(ctx context.Context) (prefstore.Snapshot, error) {
	snap := s.store.Snapshot()
	if !snap.HasPreferences {
		return prefstore.Snapshot{}, errs.NewNotFoundError("dashboard preferences not loaded")
	}
	return snap, nil
}

// --- Mutations ---

// AddWidget creates a widget with a provisional id, seeds its cell from the
// registry, auto-places it, commits optimistically, then saves and
// reconciles against the server's authoritative copy. Save failures keep
// the optimistic state and mark the sync status.
func (s *dashboardService) AddWidget(ctx context.Context, uid string, req dto.AddWidgetRequest) (*models.WidgetInstance, error) {
	entry, ok := registry.Get(req.Type)
	if !ok {
		return nil, errs.NewValidationError("unknown widget type: " + req.Type)
	}
	req.Settings = applySettingsDefaults(req.Type, req.Settings)
	if err := validateSettings(req.Type, req.Settings); err != nil {
		return nil, err
	}

	w := models.WidgetInstance{
		ID:       uuid.New().String(),
		Type:     req.Type,
		Settings: req.Settings,
	}
	cell := registry.DefaultCell(w.ID, entry)

	snap := s.store.Snapshot()
	cell.X, cell.Y = s.params.AutoPlace(snap.Layout, cell.W, cell.H)

	// Store primitives are a two-step contract: the instance and its cell
	// are committed back to back before anything can observe the gap.
	s.store.AddWidget(w)
	s.store.SaveLayout(append(snap.Layout, cell))

	s.saveAndReconcile(ctx, uid)
	return &w, nil
}

// RemoveWidget removes the widget and its cell optimistically, saves, and
// re-fetches the authoritative document so server-assigned ids never drift.
func (s *dashboardService) RemoveWidget(ctx context.Context, uid, widgetID string) error {
	if !s.widgetExists(widgetID) {
		return errs.NewNotFoundError("widget not found: " + widgetID)
	}
	s.store.RemoveWidget(widgetID)
	s.saveAndReconcile(ctx, uid)
	return nil
}

// UpdateWidgetSettings shallow-merges the given settings and persists the
// full preference set.
func (s *dashboardService) UpdateWidgetSettings(ctx context.Context, uid, widgetID string, req dto.UpdateWidgetSettingsRequest) error {
	w, ok := s.findWidget(widgetID)
	if !ok {
		return errs.NewNotFoundError("widget not found: " + widgetID)
	}
	merged := w.Settings.Merge(req.Settings)
	if err := validateSettings(w.Type, merged); err != nil {
		return err
	}
	s.store.UpdateWidgetSettings(widgetID, req.Settings)
	s.saveAndReconcile(ctx, uid)
	return nil
}

// UpdateWidgetHeight clamps the requested height against the registry bounds
// and schedules a debounced remote write.
func (s *dashboardService) UpdateWidgetHeight(ctx context.Context, uid, widgetID string, height int) error {
	w, ok := s.findWidget(widgetID)
	if !ok {
		return errs.NewNotFoundError("widget not found: " + widgetID)
	}
	if entry, ok := registry.Get(w.Type); ok {
		height = grid.ClampHeight(height, entry.MinH, entry.MaxH)
	}
	s.store.UpdateWidgetHeight(widgetID, height)
	s.scheduleLayoutWrite(ctx, uid)
	return nil
}

// ApplyLayoutChange is the grid engine's change handler: the full new layout
// is clamped, settled, saved locally with zero latency, and queued for a
// debounced remote write.
func (s *dashboardService) ApplyLayoutChange(ctx context.Context, uid string, layout []models.LayoutCell) error {
	if len(layout) == 0 {
		return errs.NewValidationError("layout must not be empty")
	}
	clamped := make([]models.LayoutCell, len(layout))
	for i, cell := range layout {
		clamped[i] = s.params.Clamp(cell)
	}
	settled := s.params.Compact(clamped)

	s.store.SaveLayout(settled)
	s.scheduleLayoutWrite(ctx, uid)
	return nil
}

// MoveWidget applies a single dragged or resized cell: the engine pins it at
// the requested position, pushes colliding neighbors down, compacts, and
// proceeds like any other layout change.
func (s *dashboardService) MoveWidget(ctx context.Context, uid, widgetID string, cell models.LayoutCell) error {
	if !s.widgetExists(widgetID) {
		return errs.NewNotFoundError("widget not found: " + widgetID)
	}
	cell.I = widgetID
	snap := s.store.Snapshot()

	// Carry over bounds the caller did not supply.
	for _, existing := range snap.Layout {
		if existing.I == widgetID {
			if cell.MinW == nil {
				cell.MinW = existing.MinW
			}
			if cell.MinH == nil {
				cell.MinH = existing.MinH
			}
			if cell.MaxW == nil {
				cell.MaxW = existing.MaxW
			}
			if cell.MaxH == nil {
				cell.MaxH = existing.MaxH
			}
		}
	}

	resolved := s.params.Resolve(snap.Layout, cell)
	settled := s.params.Compact(resolved)

	s.store.SaveLayout(settled)
	s.scheduleLayoutWrite(ctx, uid)
	return nil
}

// ToggleEditMode flips the edit affordances and returns the new mode.
func (s *dashboardService) ToggleEditMode(_ context.Context) bool {
	return s.store.ToggleEditMode()
}

// ResetToDefaults asks the gateway for a fresh default configuration and
// replaces local state with it. On failure the local state is untouched.
func (s *dashboardService) ResetToDefaults(ctx context.Context, uid string) (prefstore.Snapshot, error) {
	pref, err := s.gateway.ResetToDefaults(ctx)
	if err != nil {
		return prefstore.Snapshot{}, err
	}
	s.store.ResetToDefaults(pref)
	s.refreshMirror(ctx, pref)
	return s.store.Snapshot(), nil
}

// --- Save / reconcile flow ---

// saveAndReconcile pushes the full widget+layout set and, on success,
// replaces local state with the server's authoritative copy. On failure the
// optimistic local state is retained — local is truth until the next
// successful save.
func (s *dashboardService) saveAndReconcile(ctx context.Context, uid string) {
	log := logger.FromContext(ctx)
	snap := s.store.Snapshot()
	s.store.SetSyncStatus(models.SyncPending)

	if _, err := s.gateway.SavePreferences(ctx, snap.Widgets, snap.Layout); err != nil {
		log.Warn("preference save failed, keeping optimistic state", "error", err)
		s.store.SetSyncStatus(models.SyncError)
		s.refreshMirror(ctx, s.localPreference(snap, uid))
		return
	}

	pref, err := s.gateway.GetPreferences(ctx)
	if err != nil {
		// The save landed; reconciliation is self-correcting on the next
		// round trip.
		log.Warn("reconcile fetch failed", "error", err)
		s.store.SetSyncStatus(models.SyncError)
		s.refreshMirror(ctx, s.localPreference(snap, uid))
		return
	}
	s.store.SetPreferences(pref)
	s.refreshMirror(ctx, pref)
}

// scheduleLayoutWrite queues the current layout for a debounced remote write
// and mirrors the optimistic local state.
func (s *dashboardService) scheduleLayoutWrite(ctx context.Context, uid string) {
	snap := s.store.Snapshot()
	s.store.SetSyncStatus(models.SyncPending)
	s.syncer.Schedule(ctx, snap.Layout)
	s.refreshMirror(ctx, s.localPreference(snap, uid))
}

func (s *dashboardService) refreshMirror(ctx context.Context, pref models.DashboardPreference) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Store(ctx, pref); err != nil {
		logger.FromContext(ctx).Warn("preference mirror write failed", "error", err)
	}
}

// localPreference builds a preference document from the working copies for
// mirroring when no authoritative server copy is available.
func (s *dashboardService) localPreference(snap prefstore.Snapshot, uid string) models.DashboardPreference {
	pref := models.DashboardPreference{UserID: uid}
	if snap.Preferences != nil {
		pref = *snap.Preferences
	}
	pref.Widgets = snap.Widgets
	pref.Layout = snap.Layout
	if pref.UserID == "" {
		pref.UserID = uid
	}
	return pref
}

func (s *dashboardService) widgetExists(widgetID string) bool {
	_, ok := s.findWidget(widgetID)
	return ok
}

func (s *dashboardService) findWidget(widgetID string) (models.WidgetInstance, bool) {
	for _, w := range s.store.Snapshot().Widgets {
		if w.ID == widgetID {
			return w, true
		}
	}
	return models.WidgetInstance{}, false
}

// --- Settings validation ---

func applySettingsDefaults(widgetType string, settings models.WidgetSettings) models.WidgetSettings {
	switch widgetType {
	case dto.WidgetTypeSpendingByCategory, dto.WidgetTypeSpendingTrend:
		if settings.Months == 0 {
			settings.Months = 6
		}
	case dto.WidgetTypeRecentTransactions:
		if settings.Limit == 0 {
			settings.Limit = 10
		}
	}
	return settings
}

func validateSettings(widgetType string, settings models.WidgetSettings) error {
	switch widgetType {
	case dto.WidgetTypeSpendingByCategory, dto.WidgetTypeSpendingTrend:
		if settings.Months < 1 || settings.Months > 24 {
			return errs.NewValidationError("settings.months must be between 1 and 24")
		}
	case dto.WidgetTypeRecentTransactions:
		if settings.Limit < 1 || settings.Limit > 50 {
			return errs.NewValidationError("settings.limit must be between 1 and 50")
		}
	case dto.WidgetTypeGroupBalances:
		if settings.GroupID == "" {
			return errs.NewValidationError("settings.groupId is required for groupBalances")
		}
	}
	return nil
}
