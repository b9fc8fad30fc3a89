package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/dashboard-engine/internal/dto"
	"github.com/GregMSThompson/dashboard-engine/internal/errs"
	"github.com/GregMSThompson/dashboard-engine/internal/middleware"
	"github.com/GregMSThompson/dashboard-engine/internal/models"
	"github.com/GregMSThompson/dashboard-engine/internal/prefstore"
	"github.com/GregMSThompson/dashboard-engine/internal/registry"
	"github.com/GregMSThompson/dashboard-engine/internal/response"
)

type DashboardService interface {
	Hydrate(ctx context.Context, uid string) (prefstore.Snapshot, error)
	GetPreferences(ctx context.Context) (prefstore.Snapshot, error)
	Render(ctx context.Context) dto.RenderResponse
	AddWidget(ctx context.Context, uid string, req dto.AddWidgetRequest) (*models.WidgetInstance, error)
	RemoveWidget(ctx context.Context, uid, widgetID string) error
	UpdateWidgetSettings(ctx context.Context, uid, widgetID string, req dto.UpdateWidgetSettingsRequest) error
	UpdateWidgetHeight(ctx context.Context, uid, widgetID string, height int) error
	ApplyLayoutChange(ctx context.Context, uid string, layout []models.LayoutCell) error
	MoveWidget(ctx context.Context, uid, widgetID string, cell models.LayoutCell) error
	ToggleEditMode(ctx context.Context) bool
	ResetToDefaults(ctx context.Context, uid string) (prefstore.Snapshot, error)
}

type dashboardHandlers struct {
	ResponseHandler response.ResponseHandler
	DashboardSvc    DashboardService
}

func NewDashboardHandlers(deps *Deps) *dashboardHandlers {
	return &dashboardHandlers{
		ResponseHandler: deps.ResponseHandler,
		DashboardSvc:    deps.DashboardSvc,
	}
}

func (h *dashboardHandlers) DashboardRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetPreferences)
	r.Get("/render", h.Render)
	r.Post("/hydrate", h.Hydrate)
	r.Post("/widgets", h.AddWidget)
	r.Put("/widgets/{widgetId}/settings", h.UpdateWidgetSettings)
	r.Put("/widgets/{widgetId}/height", h.UpdateWidgetHeight)
	r.Put("/widgets/{widgetId}/cell", h.MoveWidget)
	r.Delete("/widgets/{widgetId}", h.RemoveWidget)
	r.Put("/layout", h.SaveLayout)
	r.Post("/edit-mode", h.ToggleEditMode)
	r.Post("/reset", h.Reset)
	return r
}

func (h *dashboardHandlers) Hydrate(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	snap, err := h.DashboardSvc.Hydrate(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, preferencesResponse(snap))
}

func (h *dashboardHandlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	snap, err := h.DashboardSvc.GetPreferences(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, preferencesResponse(snap))
}

func (h *dashboardHandlers) Render(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.DashboardSvc.Render(r.Context()))
}

func (h *dashboardHandlers) AddWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.AddWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	widget, err := h.DashboardSvc.AddWidget(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, widget)
}

func (h *dashboardHandlers) UpdateWidgetSettings(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	var req dto.UpdateWidgetSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	if err := h.DashboardSvc.UpdateWidgetSettings(r.Context(), uid, widgetID, req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *dashboardHandlers) UpdateWidgetHeight(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	var req dto.UpdateWidgetHeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	if err := h.DashboardSvc.UpdateWidgetHeight(r.Context(), uid, widgetID, req.Height); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *dashboardHandlers) MoveWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	var cell models.LayoutCell
	if err := json.NewDecoder(r.Body).Decode(&cell); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	if err := h.DashboardSvc.MoveWidget(r.Context(), uid, widgetID, cell); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *dashboardHandlers) RemoveWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	if err := h.DashboardSvc.RemoveWidget(r.Context(), uid, widgetID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *dashboardHandlers) SaveLayout(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveLayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	if err := h.DashboardSvc.ApplyLayoutChange(r.Context(), uid, req.Layout); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *dashboardHandlers) ToggleEditMode(w http.ResponseWriter, r *http.Request) {
	editMode := h.DashboardSvc.ToggleEditMode(r.Context())
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, dto.EditModeResponse{EditMode: editMode})
}

func (h *dashboardHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	snap, err := h.DashboardSvc.ResetToDefaults(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, preferencesResponse(snap))
}

// GetWidgetTypes returns the static catalog of supported widget types and
// their sizing constraints, for the add-widget picker.
func (h *dashboardHandlers) GetWidgetTypes(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, registry.Types())
}

func preferencesResponse(snap prefstore.Snapshot) dto.PreferencesResponse {
	return dto.PreferencesResponse{
		Preferences: snap.Preferences,
		EditMode:    snap.EditMode,
		SyncStatus:  snap.SyncStatus,
	}
}
