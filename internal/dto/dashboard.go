package dto

import (
	"github.com/GregMSThompson/dashboard-engine/internal/models"
)

// Widget type constants
const (
	WidgetTypeTotalBalance       = "totalBalance"
	WidgetTypeSpendingByCategory = "spendingByCategory"
	WidgetTypeSpendingTrend      = "spendingTrend"
	WidgetTypeBudgetOverview     = "budgetOverview"
	WidgetTypeRecentTransactions = "recentTransactions"
	WidgetTypeAccountList        = "accountList"
	WidgetTypeGroupBalances      = "groupBalances"
	WidgetTypeLoanSummary        = "loanSummary"
	WidgetTypeInvestmentSummary  = "investmentSummary"
)

// --- Request types (local API) ---

type AddWidgetRequest struct {
	Type     string                `json:"type"`
	Settings models.WidgetSettings `json:"settings"`
}

type UpdateWidgetSettingsRequest struct {
	Settings models.WidgetSettings `json:"settings"`
}

type UpdateWidgetHeightRequest struct {
	Height int `json:"height"`
}

type SaveLayoutRequest struct {
	Layout []models.LayoutCell `json:"layout"`
}

type EditModeResponse struct {
	EditMode bool `json:"editMode"`
}

// --- Response types ---

// PreferencesResponse is the current preference document plus the engine's
// client-side flags.
type PreferencesResponse struct {
	Preferences *models.DashboardPreference `json:"preferences"`
	EditMode    bool                        `json:"editMode"`
	SyncStatus  models.SyncStatus           `json:"syncStatus"`
}

// --- Render types ---

// RenderedWidget is one drift-filtered widget joined with its layout cell.
// GridWidth/GridHeight are what the widget renderer receives alongside its
// settings; data fetching and presentation happen beyond this boundary.
type RenderedWidget struct {
	Widget     models.WidgetInstance `json:"widget"`
	Cell       models.LayoutCell     `json:"cell"`
	GridWidth  int                   `json:"gridWidth"`
	GridHeight int                   `json:"gridHeight"`
}

type RenderResponse struct {
	Widgets    []RenderedWidget  `json:"widgets"`
	EditMode   bool              `json:"editMode"`
	SyncStatus models.SyncStatus `json:"syncStatus"`
}
