package models

import "time"

// SyncStatus tracks how the local preference copy relates to the gateway's.
type SyncStatus string

const (
	SyncSynced  SyncStatus = "synced"  // local state matches the last confirmed save
	SyncPending SyncStatus = "pending" // local edits exist, a write is scheduled or in flight
	SyncError   SyncStatus = "error"   // the last write failed; local state is ahead of the server
)

// DashboardPreference is the persisted dashboard configuration for one user.
// Widgets and Layout are kept in 1:1 correspondence by ID/I; the render path
// tolerates drift but the store should not let it persist.
type DashboardPreference struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Widgets   []WidgetInstance `json:"widgets"`
	Layout    []LayoutCell     `json:"layout"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`

	// SyncStatus is client-side bookkeeping and is never sent to the gateway.
	SyncStatus SyncStatus `json:"-"`
}

// Clone returns a deep-enough copy: the slices are duplicated so callers can
// mutate the result without aliasing store state.
func (p DashboardPreference) Clone() DashboardPreference {
	p.Widgets = CloneWidgets(p.Widgets)
	p.Layout = CloneLayout(p.Layout)
	return p
}
