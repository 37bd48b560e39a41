package allocation

import (
	"testing"

	"github.com/google/uuid"

	"tourly/internal/passengers"
)

func mainPassenger(relatedToNext bool) passengers.Passenger {
	return passengers.Passenger{ID: uuid.New(), IsRelatedToNext: relatedToNext}
}

func subOf(main *passengers.Passenger) passengers.Passenger {
	id := main.ID
	return passengers.Passenger{ID: uuid.New(), MainPassengerID: &id}
}

func TestAssignGroupColorsIndependentMains(t *testing.T) {
	roster := []passengers.Passenger{
		mainPassenger(false),
		mainPassenger(false),
		mainPassenger(false),
	}
	AssignGroupColors(roster)

	seen := make(map[string]bool)
	for i := range roster {
		c := roster[i].GroupColor
		if c == "" {
			t.Fatalf("passenger %d has no color", i)
		}
		if seen[c] {
			t.Errorf("color %q reused across unlinked mains", c)
		}
		seen[c] = true
	}
}

func TestAssignGroupColorsLinkedChain(t *testing.T) {
	roster := []passengers.Passenger{
		mainPassenger(true),
		mainPassenger(false),
		mainPassenger(false),
	}
	AssignGroupColors(roster)

	if roster[1].GroupColor != roster[0].GroupColor {
		t.Errorf("linked main did not inherit: %q vs %q", roster[1].GroupColor, roster[0].GroupColor)
	}
	if roster[2].GroupColor == roster[0].GroupColor {
		t.Errorf("unlinked main shares the chain color %q", roster[2].GroupColor)
	}
}

func TestAssignGroupColorsSubsInheritMain(t *testing.T) {
	main := mainPassenger(false)
	other := mainPassenger(false)
	roster := []passengers.Passenger{main, subOf(&main), other, subOf(&other)}

	AssignGroupColors(roster)

	if roster[1].GroupColor != roster[0].GroupColor {
		t.Errorf("sub color %q, want main's %q", roster[1].GroupColor, roster[0].GroupColor)
	}
	if roster[3].GroupColor != roster[2].GroupColor {
		t.Errorf("sub color %q, want main's %q", roster[3].GroupColor, roster[2].GroupColor)
	}
}

func TestAssignGroupColorsStability(t *testing.T) {
	roster := []passengers.Passenger{mainPassenger(false), mainPassenger(false)}
	AssignGroupColors(roster)
	first, second := roster[0].GroupColor, roster[1].GroupColor

	// A later structural pass must not shuffle colors already handed out.
	roster = append(roster, mainPassenger(false))
	AssignGroupColors(roster)

	if roster[0].GroupColor != first || roster[1].GroupColor != second {
		t.Errorf("existing colors changed: %q/%q -> %q/%q", first, second, roster[0].GroupColor, roster[1].GroupColor)
	}
	if roster[2].GroupColor == first || roster[2].GroupColor == second {
		t.Errorf("new main reused an assigned color %q", roster[2].GroupColor)
	}
}

func TestAssignGroupColorsCyclesPalette(t *testing.T) {
	roster := make([]passengers.Passenger, len(Palette)+1)
	for i := range roster {
		roster[i] = mainPassenger(false)
	}
	AssignGroupColors(roster)

	for i := range roster {
		if roster[i].GroupColor == "" {
			t.Fatalf("passenger %d has no color after palette exhaustion", i)
		}
	}
}
