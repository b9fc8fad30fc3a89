package models

// WidgetInstance is one widget placed on a user's dashboard.
// The id is client-generated at creation and confirmed by the gateway on save.
type WidgetInstance struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Settings WidgetSettings `json:"settings"`
}

// WidgetSettings holds all possible settings fields for any widget type.
// Not all fields are valid for all types; the service layer enforces per-type rules.
type WidgetSettings struct {
	Months     int      `json:"months,omitempty"`     // history window for trend/category widgets
	Limit      int      `json:"limit,omitempty"`      // row cap for list widgets
	Tags       []string `json:"tags,omitempty"`       // tag filter for category widgets
	AccountIDs []string `json:"accountIds,omitempty"` // account filter
	GroupID    string   `json:"groupId,omitempty"`    // shared-expense group scope
	ShowHidden *bool    `json:"showHidden,omitempty"`
}

// Merge overlays the set fields of other onto s and returns the result.
// Unset fields in other leave the existing setting untouched (shallow merge).
func (s WidgetSettings) Merge(other WidgetSettings) WidgetSettings {
	if other.Months != 0 {
		s.Months = other.Months
	}
	if other.Limit != 0 {
		s.Limit = other.Limit
	}
	if other.Tags != nil {
		s.Tags = other.Tags
	}
	if other.AccountIDs != nil {
		s.AccountIDs = other.AccountIDs
	}
	if other.GroupID != "" {
		s.GroupID = other.GroupID
	}
	if other.ShowHidden != nil {
		s.ShowHidden = other.ShowHidden
	}
	return s
}
