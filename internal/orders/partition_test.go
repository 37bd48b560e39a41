package orders

import (
	"testing"

	"tourly/internal/passengers"

	"github.com/google/uuid"
)

func mainPassenger(related bool) passengers.Passenger {
	return passengers.Passenger{ID: uuid.New(), IsRelatedToNext: related}
}

func subOf(m passengers.Passenger) passengers.Passenger {
	return passengers.Passenger{ID: uuid.New(), MainPassengerID: &m.ID}
}

func TestPartitionGroups(t *testing.T) {
	a := mainPassenger(true)
	b := mainPassenger(false)
	c := mainPassenger(false)

	tests := []struct {
		name   string
		roster []passengers.Passenger
		want   [][]int // group sizes, in order
	}{
		{
			name:   "empty roster",
			roster: nil,
			want:   nil,
		},
		{
			name:   "single passenger",
			roster: []passengers.Passenger{c},
			want:   [][]int{{1}},
		},
		{
			name:   "linked pair then solo",
			roster: []passengers.Passenger{a, b, c},
			want:   [][]int{{2}, {1}},
		},
		{
			name:   "no links at all",
			roster: []passengers.Passenger{b, c},
			want:   [][]int{{1}, {1}},
		},
		{
			name:   "chain of three",
			roster: []passengers.Passenger{mainPassenger(true), mainPassenger(true), mainPassenger(false)},
			want:   [][]int{{3}},
		},
		{
			name:   "trailing link has nothing to bind",
			roster: []passengers.Passenger{b, mainPassenger(true)},
			want:   [][]int{{1}, {1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := PartitionGroups(tt.roster)
			if len(groups) != len(tt.want) {
				t.Fatalf("got %d groups, want %d", len(groups), len(tt.want))
			}
			for i, g := range groups {
				if len(g) != tt.want[i][0] {
					t.Errorf("group %d size = %d, want %d", i, len(g), tt.want[i][0])
				}
			}
		})
	}
}

func TestPartitionGroupsSubsFollowMain(t *testing.T) {
	m1 := mainPassenger(false)
	s1 := subOf(m1)
	s2 := subOf(m1)
	m2 := mainPassenger(false)

	groups := PartitionGroups([]passengers.Passenger{m1, s1, s2, m2})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if len(groups[0]) != 3 {
		t.Errorf("first group size = %d, want main plus two subs", len(groups[0]))
	}
	if len(groups[1]) != 1 {
		t.Errorf("second group size = %d, want 1", len(groups[1]))
	}
}

func TestPartitionGroupsLinkedMainKeepsSubs(t *testing.T) {
	m1 := mainPassenger(true)
	s1 := subOf(m1)
	m2 := mainPassenger(false)
	s2 := subOf(m2)
	m3 := mainPassenger(false)

	groups := PartitionGroups([]passengers.Passenger{m1, s1, m2, s2, m3})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if len(groups[0]) != 4 {
		t.Errorf("linked group size = %d, want 4", len(groups[0]))
	}
}

func TestPartitionGroupsSubJoinsOwnMainRegardlessOfPosition(t *testing.T) {
	m1 := mainPassenger(false)
	m2 := mainPassenger(false)
	s1 := subOf(m1)

	// The sub sits after a later main but still belongs to m1.
	groups := PartitionGroups([]passengers.Passenger{m1, m2, s1})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if len(groups[0]) != 2 {
		t.Errorf("first group size = %d, want main plus displaced sub", len(groups[0]))
	}
	if groups[0][1].MainPassengerID == nil || *groups[0][1].MainPassengerID != m1.ID {
		t.Errorf("displaced sub landed in the wrong group")
	}
	if len(groups[1]) != 1 {
		t.Errorf("second group size = %d, want 1", len(groups[1]))
	}
}

func TestGroupTotals(t *testing.T) {
	group := []passengers.Passenger{
		{Price: 1000},
		{Price: 1050},
		{Price: 0},
	}
	seats, total := groupTotals(group)
	if seats != 3 {
		t.Errorf("seats = %d, want 3", seats)
	}
	if total != 2050 {
		t.Errorf("total = %v, want 2050", total)
	}
}
