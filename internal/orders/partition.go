package orders

import (
	"tourly/internal/passengers"

	"github.com/google/uuid"
)

// PartitionGroups cuts a roster into commit groups. Consecutive main
// passengers stay in one group as long as each carries the related-to-next
// link; the group closes at the first main without it. Sub passengers
// always land in their own main's group, wherever they sit in the roster.
func PartitionGroups(roster []passengers.Passenger) [][]passengers.Passenger {
	var groups [][]passengers.Passenger
	groupOf := make(map[uuid.UUID]int) // main passenger id -> group index
	chained := false                   // previous main linked itself to the next one

	for _, p := range roster {
		if p.IsMain() {
			if len(groups) == 0 || !chained {
				groups = append(groups, nil)
			}
			idx := len(groups) - 1
			groups[idx] = append(groups[idx], p)
			groupOf[p.ID] = idx
			chained = p.IsRelatedToNext
			continue
		}

		idx, ok := groupOf[*p.MainPassengerID]
		if !ok {
			// Orphaned link; keep the sub in the open group rather than
			// dropping the row.
			if len(groups) == 0 {
				groups = append(groups, nil)
			}
			idx = len(groups) - 1
		}
		groups[idx] = append(groups[idx], p)
	}
	return groups
}

// restampGroup gives every passenger in a group a fresh ID for its
// persisted row and rewires the sub links to match, so main_passenger_id
// always resolves to a row written in the same transaction. The wizard's
// session copy is left untouched.
func restampGroup(group []passengers.Passenger) []passengers.Passenger {
	fresh := make(map[uuid.UUID]uuid.UUID, len(group))
	out := make([]passengers.Passenger, len(group))
	copy(out, group)

	for i := range out {
		id := uuid.New()
		fresh[out[i].ID] = id
		out[i].ID = id
	}
	for i := range out {
		if out[i].MainPassengerID == nil {
			continue
		}
		if id, ok := fresh[*out[i].MainPassengerID]; ok {
			linked := id
			out[i].MainPassengerID = &linked
		}
	}
	return out
}

// groupTotals sums seats and price over one commit group.
func groupTotals(group []passengers.Passenger) (seats int, total float64) {
	for _, p := range group {
		seats++
		total += p.Price
	}
	return seats, total
}
