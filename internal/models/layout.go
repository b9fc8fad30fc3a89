package models

// LayoutCell is the grid position and size record for one widget instance.
// I references the WidgetInstance this cell positions. Optional bounds are
// pointers so the gateway can distinguish "unset" from zero.
type LayoutCell struct {
	I    string `json:"i"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
	MinW *int   `json:"minW,omitempty"`
	MinH *int   `json:"minH,omitempty"`
	MaxW *int   `json:"maxW,omitempty"`
	MaxH *int   `json:"maxH,omitempty"`
}

// Overlaps reports whether two cells occupy any common grid unit.
func (c LayoutCell) Overlaps(o LayoutCell) bool {
	if c.X+c.W <= o.X || o.X+o.W <= c.X {
		return false
	}
	if c.Y+c.H <= o.Y || o.Y+o.H <= c.Y {
		return false
	}
	return true
}

// CloneLayout returns a copy of the layout slice.
func CloneLayout(layout []LayoutCell) []LayoutCell {
	if len(layout) == 0 {
		return nil
	}
	dup := make([]LayoutCell, len(layout))
	copy(dup, layout)
	return dup
}

// CloneWidgets returns a copy of the widget slice.
func CloneWidgets(widgets []WidgetInstance) []WidgetInstance {
	if len(widgets) == 0 {
		return nil
	}
	dup := make([]WidgetInstance, len(widgets))
	copy(dup, widgets)
	return dup
}
