package allocation

import (
	"fmt"
	"strconv"
	"strings"

	"tourly/internal/passengers"
)

// Room types recognised by the allocation engine.
const (
	RoomSingle = "Single"
	RoomKing   = "King"
	RoomDouble = "Double"
	RoomTwin   = "Twin"
	RoomFamily = "Family"
)

// Occupancy returns the maximum occupant count for a room type, or 0 for
// unrecognised types (which never receive an allocation).
func Occupancy(roomType string) int {
	switch roomType {
	case RoomSingle, RoomKing:
		return 1
	case RoomDouble, RoomTwin:
		return 2
	case RoomFamily:
		return 4
	}
	return 0
}

// RoomCodeFor picks the room code for a passenger of the given room type,
// given every passenger that precedes it in the combined set (remote booked
// passengers followed by the in-progress roster). Codes are "{Type}-{n}";
// the smallest n whose occupant count is below the type's maximum wins.
func RoomCodeFor(preceding []passengers.Passenger, roomType string) string {
	max := Occupancy(roomType)
	if max == 0 {
		return ""
	}

	counts := make(map[int]int)
	for i := range preceding {
		p := &preceding[i]
		if p.RoomType != roomType || p.RoomAllocation == "" {
			continue
		}
		if n, ok := parseRoomNumber(p.RoomAllocation, roomType); ok {
			counts[n]++
		}
	}

	n := 1
	for counts[n] >= max {
		n++
	}
	return fmt.Sprintf("%s-%d", roomType, n)
}

func parseRoomNumber(code, roomType string) (int, bool) {
	rest, ok := strings.CutPrefix(code, roomType+"-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ReallocateAll recomputes room codes for the whole roster against the
// already-booked passengers for the same tour+date. It walks the roster in
// order so earlier entries fill rooms first, and is idempotent: the codes
// depend only on room types and positions, never on previous codes held by
// the roster itself.
func ReallocateAll(roster []passengers.Passenger, booked []passengers.Passenger) {
	combined := make([]passengers.Passenger, 0, len(booked)+len(roster))
	combined = append(combined, booked...)

	for i := range roster {
		roster[i].RoomAllocation = RoomCodeFor(combined, roster[i].RoomType)
		combined = append(combined, roster[i])
	}
}

// AssignFamilyBlock places a Family room at roster index idx and, in the
// block-reassignment mode, drags the next maxOccupancy-1 roster entries into
// the same room, overwriting their room type. Models a family booked as a
// block rather than individually placed.
func AssignFamilyBlock(roster []passengers.Passenger, booked []passengers.Passenger, idx int) {
	if idx < 0 || idx >= len(roster) {
		return
	}

	roster[idx].RoomType = RoomFamily
	ReallocateAll(roster, booked)
	code := roster[idx].RoomAllocation

	span := Occupancy(RoomFamily) - 1
	for off := 1; off <= span && idx+off < len(roster); off++ {
		roster[idx+off].RoomType = RoomFamily
		roster[idx+off].RoomAllocation = code
	}
}
