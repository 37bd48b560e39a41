package allocation

import (
	"fmt"

	"tourly/internal/passengers"
)

// Problem flags one passenger's allocation issue.
type Problem struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateRoomAllocations checks every passenger in the combined set for an
// unrecognised room type, a missing code, or a room packed beyond its
// type's maximum occupancy.
func ValidateRoomAllocations(all []passengers.Passenger) []Problem {
	var problems []Problem

	occupants := make(map[string]int)
	for i := range all {
		p := &all[i]

		max := Occupancy(p.RoomType)
		if max == 0 {
			problems = append(problems, Problem{
				Index:   i,
				Field:   "roomType",
				Message: fmt.Sprintf("unrecognised room type %q", p.RoomType),
			})
			continue
		}

		if p.RoomAllocation == "" {
			problems = append(problems, Problem{
				Index:   i,
				Field:   "room_allocation",
				Message: "passenger has no room allocation",
			})
			continue
		}

		occupants[p.RoomAllocation]++
		if occupants[p.RoomAllocation] > max {
			problems = append(problems, Problem{
				Index:   i,
				Field:   "room_allocation",
				Message: fmt.Sprintf("room %s holds %d occupants, maximum is %d", p.RoomAllocation, occupants[p.RoomAllocation], max),
			})
		}
	}

	return problems
}
