// Package registry is the static widget catalog. It seeds default sizing for
// newly added widgets and provides the bounds resizes are clamped against.
// It is read-only; widget types persisted by older deployments may be absent
// here and must be skipped, not rejected.
package registry

import (
	"github.com/GregMSThompson/dashboard-engine/internal/dto"
	"github.com/GregMSThompson/dashboard-engine/internal/models"
	"github.com/GregMSThompson/dashboard-engine/pkg/helpers"
)

// Entry describes one widget type: display metadata plus grid sizing rules.
type Entry struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DefaultW    int    `json:"defaultWidth"`
	DefaultH    int    `json:"defaultHeight"`
	MinW        int    `json:"minWidth"`
	MinH        int    `json:"minHeight"`
	MaxW        int    `json:"maxWidth,omitempty"` // 0 = unbounded
	MaxH        int    `json:"maxHeight,omitempty"`
	Resizable   bool   `json:"resizable"`
	Draggable   bool   `json:"draggable"`
}

var catalog = []Entry{
	{
		Type: dto.WidgetTypeTotalBalance, Name: "Total balance",
		Description: "Net balance across all visible accounts",
		DefaultW:    1, DefaultH: 2, MinW: 1, MinH: 1, MaxH: 4,
		Resizable: true, Draggable: true,
	},
	{
		Type: dto.WidgetTypeSpendingByCategory, Name: "Spending by category",
		Description: "Spending split by tag over a configurable window",
		DefaultW:    2, DefaultH: 3, MinW: 1, MinH: 2, MaxH: 6,
		Resizable: true, Draggable: true,
	},
	{
		Type: dto.WidgetTypeSpendingTrend, Name: "Spending trend",
		Description: "Month-over-month spending history",
		DefaultW:    2, DefaultH: 3, MinW: 2, MinH: 2, MaxH: 6,
		Resizable: true, Draggable: true,
	},
	{
		Type: dto.WidgetTypeBudgetOverview, Name: "Budgets",
		Description: "Progress against the current period's budgets",
		DefaultW:    2, DefaultH: 3, MinW: 1, MinH: 2, MaxH: 6,
		Resizable: true, Draggable: true,
	},
	{
		Type: dto.WidgetTypeRecentTransactions, Name: "Recent transactions",
		Description: "Latest transactions across accounts",
		DefaultW:    2, DefaultH: 4, MinW: 1, MinH: 2, MaxH: 8,
		Resizable: true, Draggable: true,
	},
	{
		Type: dto.WidgetTypeAccountList, Name: "Accounts",
		Description: "Balances per account",
		DefaultW:    1, DefaultH: 3, MinW: 1, MinH: 2, MaxH: 6,
		Resizable: true, Draggable: true,
	},
	{
		Type: dto.WidgetTypeGroupBalances, Name: "Group balances",
		Description: "What you owe and are owed in shared groups",
		DefaultW:    1, DefaultH: 2, MinW: 1, MinH: 1, MaxH: 4,
		Resizable: true, Draggable: true,
	},
	{
		Type: dto.WidgetTypeLoanSummary, Name: "Loans",
		Description: "Outstanding loans and next payments",
		DefaultW:    1, DefaultH: 2, MinW: 1, MinH: 1, MaxH: 4,
		Resizable: true, Draggable: true,
	},
	{
		Type: dto.WidgetTypeInvestmentSummary, Name: "Investments",
		Description: "Portfolio value and day change",
		DefaultW:    2, DefaultH: 2, MinW: 1, MinH: 1, MaxH: 4,
		Resizable: true, Draggable: true,
	},
}

var byType = func() map[string]Entry {
	m := make(map[string]Entry, len(catalog))
	for _, e := range catalog {
		m[e.Type] = e
	}
	return m
}()

// Get returns the catalog entry for a widget type. The boolean is false for
// unknown types; callers must degrade gracefully rather than fail.
func Get(widgetType string) (Entry, bool) {
	e, ok := byType[widgetType]
	return e, ok
}

// Types returns the full catalog in display order, for the add-widget picker.
func Types() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog)
	return out
}

// DefaultCell seeds a layout cell for a new widget of the given type. The
// position is left at the origin; the grid engine assigns the real slot.
func DefaultCell(widgetID string, e Entry) models.LayoutCell {
	cell := models.LayoutCell{
		I:    widgetID,
		W:    e.DefaultW,
		H:    e.DefaultH,
		MinW: helpers.Ptr(e.MinW),
		MinH: helpers.Ptr(e.MinH),
	}
	if e.MaxW > 0 {
		cell.MaxW = helpers.Ptr(e.MaxW)
	}
	if e.MaxH > 0 {
		cell.MaxH = helpers.Ptr(e.MaxH)
	}
	return cell
}
