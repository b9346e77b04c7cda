package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Overlay composites popup over the centre of base, which is treated as a
// width x height grid. Rows of popup are padded to its widest row so the
// box hides everything beneath it.
func Overlay(base, popup string, width, height int) string {
	rows := strings.Split(base, "\n")
	for len(rows) < height {
		rows = append(rows, "")
	}
	box := strings.Split(popup, "\n")
	boxWidth := 0
	for _, line := range box {
		boxWidth = max(boxWidth, ansi.StringWidth(line))
	}

	top := max((height-len(box))/2, 0)
	col := max((width-boxWidth)/2, 0)
	for i, line := range box {
		r := top + i
		if r >= height || r >= len(rows) {
			break
		}
		rows[r] = splice(rows[r], line, col, boxWidth, width)
	}
	return strings.Join(rows, "\n")
}

// splice writes s, padded to w cells, over row starting at column col.
func splice(row, s string, col, w, width int) string {
	if gap := width - ansi.StringWidth(row); gap > 0 {
		row += strings.Repeat(" ", gap)
	}
	head := ansi.Truncate(row, col, "")
	if gap := col - ansi.StringWidth(head); gap > 0 {
		head += strings.Repeat(" ", gap)
	}
	if gap := w - ansi.StringWidth(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return head + s + ansi.TruncateLeft(row, col+w, "")
}

// Truncate shortens s to width cells, appending "…" when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
