package allocation

import (
	"testing"

	"tourly/internal/passengers"
)

func rosterOf(roomTypes ...string) []passengers.Passenger {
	list := make([]passengers.Passenger, len(roomTypes))
	for i, rt := range roomTypes {
		list[i] = passengers.Passenger{RoomType: rt, SerialNo: i + 1}
	}
	return list
}

func codes(list []passengers.Passenger) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].RoomAllocation
	}
	return out
}

func TestOccupancy(t *testing.T) {
	tests := []struct {
		roomType string
		want     int
	}{
		{RoomSingle, 1},
		{RoomKing, 1},
		{RoomDouble, 2},
		{RoomTwin, 2},
		{RoomFamily, 4},
		{"Suite", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := Occupancy(tt.roomType); got != tt.want {
			t.Errorf("Occupancy(%q) = %d, want %d", tt.roomType, got, tt.want)
		}
	}
}

func TestReallocateAllPacksSmallestRoomFirst(t *testing.T) {
	roster := rosterOf(RoomDouble, RoomDouble, RoomDouble)
	ReallocateAll(roster, nil)

	want := []string{"Double-1", "Double-1", "Double-2"}
	for i, w := range want {
		if roster[i].RoomAllocation != w {
			t.Errorf("passenger %d: got %q, want %q", i, roster[i].RoomAllocation, w)
		}
	}
}

func TestReallocateAllMixedTypes(t *testing.T) {
	roster := rosterOf(RoomSingle, RoomDouble, RoomSingle, RoomDouble, RoomDouble)
	ReallocateAll(roster, nil)

	want := []string{"Single-1", "Double-1", "Single-2", "Double-1", "Double-2"}
	got := codes(roster)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("passenger %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReallocateAllCountsBookedPassengers(t *testing.T) {
	booked := rosterOf(RoomDouble)
	ReallocateAll(booked, nil)

	roster := rosterOf(RoomDouble, RoomDouble)
	ReallocateAll(roster, booked)

	// Double-1 already has one remote occupant, so only one roster
	// passenger fits before a second room opens.
	if roster[0].RoomAllocation != "Double-1" {
		t.Errorf("first roster passenger: got %q, want Double-1", roster[0].RoomAllocation)
	}
	if roster[1].RoomAllocation != "Double-2" {
		t.Errorf("second roster passenger: got %q, want Double-2", roster[1].RoomAllocation)
	}
}

func TestReallocateAllIsIdempotent(t *testing.T) {
	roster := rosterOf(RoomTwin, RoomTwin, RoomFamily, RoomTwin, RoomSingle)
	ReallocateAll(roster, nil)
	first := codes(roster)

	ReallocateAll(roster, nil)
	second := codes(roster)

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("passenger %d changed on re-run: %q -> %q", i, first[i], second[i])
		}
	}
}

func TestReallocateAllSkipsUnknownRoomType(t *testing.T) {
	roster := rosterOf(RoomDouble, "Penthouse")
	ReallocateAll(roster, nil)

	if roster[1].RoomAllocation != "" {
		t.Errorf("unknown room type got allocation %q, want none", roster[1].RoomAllocation)
	}
}

func TestAssignFamilyBlock(t *testing.T) {
	roster := rosterOf(RoomDouble, RoomDouble, RoomSingle, RoomSingle, RoomTwin)
	ReallocateAll(roster, nil)

	AssignFamilyBlock(roster, nil, 1)

	for i := 1; i <= 4; i++ {
		if roster[i].RoomType != RoomFamily {
			t.Errorf("passenger %d: room type %q, want Family", i, roster[i].RoomType)
		}
		if roster[i].RoomAllocation != roster[1].RoomAllocation {
			t.Errorf("passenger %d: code %q, want %q", i, roster[i].RoomAllocation, roster[1].RoomAllocation)
		}
	}
	if roster[0].RoomType != RoomDouble {
		t.Errorf("passenger before the block was touched: %q", roster[0].RoomType)
	}
}

func TestAssignFamilyBlockAtTail(t *testing.T) {
	roster := rosterOf(RoomSingle, RoomSingle)
	ReallocateAll(roster, nil)

	// Block extends past the roster end; only existing entries join.
	AssignFamilyBlock(roster, nil, 1)

	if roster[1].RoomType != RoomFamily {
		t.Fatalf("target room type %q, want Family", roster[1].RoomType)
	}
	if roster[0].RoomType != RoomSingle {
		t.Errorf("preceding passenger was dragged into the block")
	}
}

func TestValidateRoomAllocations(t *testing.T) {
	tests := []struct {
		name     string
		roster   []passengers.Passenger
		problems int
	}{
		{
			name: "clean roster",
			roster: func() []passengers.Passenger {
				r := rosterOf(RoomDouble, RoomDouble, RoomSingle)
				ReallocateAll(r, nil)
				return r
			}(),
			problems: 0,
		},
		{
			name:     "unknown type",
			roster:   rosterOf("Dorm"),
			problems: 1,
		},
		{
			name:     "missing allocation",
			roster:   rosterOf(RoomSingle),
			problems: 1,
		},
		{
			name: "over occupancy",
			roster: []passengers.Passenger{
				{RoomType: RoomSingle, RoomAllocation: "Single-1"},
				{RoomType: RoomSingle, RoomAllocation: "Single-1"},
			},
			problems: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateRoomAllocations(tt.roster)
			if len(got) != tt.problems {
				t.Errorf("got %d problems, want %d: %v", len(got), tt.problems, got)
			}
		})
	}
}
