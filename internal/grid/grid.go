// Package grid implements the dashboard grid geometry: default parameters,
// bound clamping, auto-placement for new cells, collision resolution and
// vertical compaction. Everything here is pure integer math over layout
// cells; rendering is someone else's problem.
package grid

import (
	"log/slog"
	"sort"

	"github.com/GregMSThompson/dashboard-engine/internal/models"
	"github.com/GregMSThompson/dashboard-engine/pkg/helpers"
)

// Params fixes the grid geometry. The dashboard uses a 4-column grid with
// 100 px rows and 16 px gutters.
type Params struct {
	Cols      int
	RowHeight int
	Margin    int
	MinWidth  int
}

// DefaultParams matches the dashboard's fixed geometry.
func DefaultParams() Params {
	return Params{Cols: 4, RowHeight: 100, Margin: 16, MinWidth: 300}
}

// ColumnWidth converts a container pixel width into a per-column pixel width.
// Widths below the floor are raised to it so a collapsing container never
// produces a degenerate layout.
func (p Params) ColumnWidth(containerWidth int) int {
	if containerWidth < p.MinWidth {
		containerWidth = p.MinWidth
	}
	return (containerWidth - p.Margin*(p.Cols+1)) / p.Cols
}

// Clamp forces a cell inside its own min/max bounds and the grid's column
// range. Violated bounds are corrected, never ignored.
func (p Params) Clamp(cell models.LayoutCell) models.LayoutCell {
	if minW := helpers.ValueOr(cell.MinW, 1); cell.W < minW {
		cell.W = minW
	}
	if maxW := helpers.ValueOr(cell.MaxW, p.Cols); cell.W > maxW {
		cell.W = maxW
	}
	if minH := helpers.ValueOr(cell.MinH, 1); cell.H < minH {
		cell.H = minH
	}
	if cell.MaxH != nil && cell.H > *cell.MaxH {
		cell.H = *cell.MaxH
	}
	if cell.W > p.Cols {
		cell.W = p.Cols
	}
	if cell.X < 0 {
		cell.X = 0
	}
	if cell.X+cell.W > p.Cols {
		cell.X = p.Cols - cell.W
	}
	if cell.Y < 0 {
		cell.Y = 0
	}
	return cell
}

// ClampHeight bounds a requested height by the given min/max (zero max means
// unbounded).
func ClampHeight(height, minH, maxH int) int {
	if minH > 0 && height < minH {
		height = minH
	}
	if maxH > 0 && height > maxH {
		height = maxH
	}
	if height < 1 {
		height = 1
	}
	return height
}

// AutoPlace finds the first free position for a w×h cell, scanning rows top
// to bottom and columns left to right. The returned x,y never overlaps an
// existing cell.
func (p Params) AutoPlace(layout []models.LayoutCell, w, h int) (x, y int) {
	if w > p.Cols {
		w = p.Cols
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	probe := models.LayoutCell{W: w, H: h}
	for y = 0; ; y++ {
		for x = 0; x+w <= p.Cols; x++ {
			probe.X, probe.Y = x, y
			if !collides(layout, probe, "") {
				return x, y
			}
		}
	}
}

// Resolve applies a dragged or resized cell to the layout and settles the
// result: cells are re-placed in reading order, each pushed downward past any
// collision, with the moved cell pinned at its requested row. The input is
// not modified.
func (p Params) Resolve(layout []models.LayoutCell, moved models.LayoutCell) []models.LayoutCell {
	out := models.CloneLayout(layout)
	for i := range out {
		if out[i].I == moved.I {
			out[i] = p.Clamp(moved)
		}
	}
	return p.settle(out, moved.I)
}

// Compact gravitates cells upward to fill vertical gaps, preserving column
// positions. The input is not modified.
func (p Params) Compact(layout []models.LayoutCell) []models.LayoutCell {
	return p.settle(models.CloneLayout(layout), "")
}

// settle places cells one at a time in (y, x) order. Each cell rises until
// it would collide with an already-settled cell, then sinks until free.
// A pinned cell keeps its row and is settled first, so drags displace
// neighbors instead of snapping back.
func (p Params) settle(out []models.LayoutCell, pinnedID string) []models.LayoutCell {
	sortByPosition(out)
	order := make([]int, 0, len(out))
	if pinnedID != "" {
		for i := range out {
			if out[i].I == pinnedID {
				order = append(order, i)
			}
		}
	}
	for i := range out {
		if pinnedID == "" || out[i].I != pinnedID {
			order = append(order, i)
		}
	}

	placed := make([]models.LayoutCell, 0, len(out))
	for _, i := range order {
		cell := out[i]
		if cell.I != pinnedID {
			for cell.Y > 0 {
				probe := cell
				probe.Y--
				if collides(placed, probe, "") {
					break
				}
				cell.Y--
			}
		}
		for collides(placed, cell, "") {
			cell.Y++
		}
		out[i] = cell
		placed = append(placed, cell)
	}
	sortByPosition(out)
	return out
}

// FilterRenderable joins widgets with their layout cells and drops any
// unmatched entry on either side, logging a diagnostic per drop. Cells with
// non-positive spans are treated as missing placement data. The render path
// must stay tolerant: persisted data can drift from the widget catalog and
// from itself without ever crashing the dashboard.
func FilterRenderable(widgets []models.WidgetInstance, layout []models.LayoutCell, log *slog.Logger) ([]models.WidgetInstance, []models.LayoutCell) {
	cells := make(map[string]models.LayoutCell, len(layout))
	for _, c := range layout {
		if c.W <= 0 || c.H <= 0 {
			log.Warn("skipping layout cell with missing placement", "widget_id", c.I)
			continue
		}
		cells[c.I] = c
	}
	outWidgets := make([]models.WidgetInstance, 0, len(widgets))
	outLayout := make([]models.LayoutCell, 0, len(widgets))
	seen := make(map[string]bool, len(widgets))
	for _, w := range widgets {
		c, ok := cells[w.ID]
		if !ok {
			log.Warn("skipping widget with no layout cell", "widget_id", w.ID, "type", w.Type)
			continue
		}
		outWidgets = append(outWidgets, w)
		outLayout = append(outLayout, c)
		seen[w.ID] = true
	}
	for _, c := range layout {
		if _, ok := cells[c.I]; ok && !seen[c.I] {
			log.Warn("skipping layout cell with no widget", "widget_id", c.I)
		}
	}
	return outWidgets, outLayout
}

// --- Helpers ---

func collides(layout []models.LayoutCell, cell models.LayoutCell, skipID string) bool {
	for _, other := range layout {
		if skipID != "" && other.I == skipID {
			continue
		}
		if other.I == cell.I && cell.I != "" {
			continue
		}
		if cell.Overlaps(other) {
			return true
		}
	}
	return false
}

func sortByPosition(layout []models.LayoutCell) {
	sort.SliceStable(layout, func(i, j int) bool {
		if layout[i].Y != layout[j].Y {
			return layout[i].Y < layout[j].Y
		}
		return layout[i].X < layout[j].X
	})
}
