package store

import (
	"sort"
	"time"

	"ribobook/internal/bookings/catalog"
	"ribobook/pkg/model"
)

// Dashboard display order: actionable work first, then handled, then dead.
var statusPriority = map[model.Status]int{
	model.StatusPending: 1,
	model.StatusSuccess: 2,
	model.StatusExpired: 3,
}

// SortForDisplay orders bookings by status priority (Pending, Success,
// Expired) and, within equal status, by the slot's start instant
// ascending. Order among exact ties is unspecified but stable.
func SortForDisplay(bookings []model.Booking) []model.Booking {
	sorted := make([]model.Booking, len(bookings))
	copy(sorted, bookings)

	sort.SliceStable(sorted, func(i, j int) bool {
		pi := statusPriority[sorted[i].Status.Effective()]
		pj := statusPriority[sorted[j].Status.Effective()]
		if pi != pj {
			return pi < pj
		}
		return slotInstant(sorted[i]).Before(slotInstant(sorted[j]))
	})
	return sorted
}

// slotInstant is the sort key within a status group. A booking whose
// date or time does not parse sorts to the front of its group.
func slotInstant(b model.Booking) time.Time {
	instant, err := catalog.SlotInstant(b.Date, b.Time)
	if err != nil {
		return time.Time{}
	}
	return instant
}
