package allocation

import (
	"github.com/google/uuid"

	"tourly/internal/passengers"
)

// Palette is the finite set of display colors used to group linked
// passengers. Purely cosmetic; order matters for determinism.
var Palette = []string{
	"#3b82f6", // blue
	"#22c55e", // green
	"#f97316", // orange
	"#a855f7", // purple
	"#ef4444", // red
	"#14b8a6", // teal
	"#eab308", // yellow
	"#ec4899", // pink
}

// AssignGroupColors walks the roster and tags every passenger with a group
// color. Mains keep a color they already carry; a main directly after a
// main flagged is_related_to_next inherits that main's color; otherwise the
// next unused palette color is taken, cycling when exhausted. Subs always
// inherit their main's color. The result depends only on roster content and
// the linking flags, never on the order mutations were issued.
func AssignGroupColors(roster []passengers.Passenger) {
	used := make(map[string]bool)
	for i := range roster {
		if roster[i].IsMain() && roster[i].GroupColor != "" {
			used[roster[i].GroupColor] = true
		}
	}

	cursor := 0
	nextColor := func() string {
		for range Palette {
			c := Palette[cursor%len(Palette)]
			cursor++
			if !used[c] {
				return c
			}
		}
		// Palette exhausted: wrap deterministically.
		c := Palette[cursor%len(Palette)]
		cursor++
		return c
	}

	var prevMain *passengers.Passenger
	for i := range roster {
		p := &roster[i]
		if !p.IsMain() {
			continue
		}
		if p.GroupColor == "" {
			if prevMain != nil && prevMain.IsRelatedToNext && prevMain.GroupColor != "" {
				p.GroupColor = prevMain.GroupColor
			} else {
				p.GroupColor = nextColor()
			}
			used[p.GroupColor] = true
		}
		prevMain = p
	}

	byID := make(map[uuid.UUID]string, len(roster))
	for i := range roster {
		if roster[i].IsMain() {
			byID[roster[i].ID] = roster[i].GroupColor
		}
	}
	for i := range roster {
		p := &roster[i]
		if p.MainPassengerID != nil {
			p.GroupColor = byID[*p.MainPassengerID]
		}
	}
}
