package availability

import "github.com/google/uuid"

// DefaultStepMinutes is the fixed slot width used across the service.
const DefaultStepMinutes = 30

// Booking is the minimal view of an appointment the resolver needs. Active is
// false for cancelled appointments, which free their slot.
type Booking struct {
	ProviderID uuid.UUID
	Date       string
	Time       TimeOfDay
	Active     bool
}

// GenerateSlots expands a working range into fixed-width start times. A start
// is included iff it is strictly before the range end; whether start+step
// overflows the end is deliberately not checked, so a 09:00-09:29 range still
// yields 09:00. Inverted or empty ranges yield nothing.
func GenerateSlots(r WorkingRange, stepMinutes int) []TimeOfDay {
	if stepMinutes <= 0 || r.Start >= r.End {
		return nil
	}
	slots := make([]TimeOfDay, 0, (int(r.End)-int(r.Start)+stepMinutes-1)/stepMinutes)
	for t := r.Start; t < r.End; t += TimeOfDay(stepMinutes) {
		slots = append(slots, t)
	}
	return slots
}

// Resolve computes the bookable start times for one provider on one date:
// generate slots for every declared range of that weekday, then drop slots
// covered by a blackout or already held by an active booking.
//
// Overlapping declared ranges produce duplicate start times and the resolver
// does not deduplicate them; callers that care render them as a set.
func Resolve(date string, profile Profile, booked []Booking) []TimeOfDay {
	dayIndex, err := Weekday(date)
	if err != nil {
		return nil
	}

	day, ok := profile.Schedule(dayIndex)
	if !ok || !day.IsActive {
		return nil
	}

	var slots []TimeOfDay
	for _, r := range day.Ranges {
		slots = append(slots, GenerateSlots(r, DefaultStepMinutes)...)
	}

	var blocked []BlockedSlot
	for _, b := range profile.BlockedSlots {
		if b.Date == date {
			blocked = append(blocked, b)
		}
	}

	out := slots[:0]
	for _, slot := range slots {
		if isBlocked(slot, blocked) {
			continue
		}
		if !IsBookable(profile.ProviderID, date, slot, booked) {
			continue
		}
		out = append(out, slot)
	}
	return out
}

// isBlocked reports whether a slot start falls inside any blackout for the
// date. The lower bound is inclusive, the upper bound exclusive.
func isBlocked(slot TimeOfDay, blocked []BlockedSlot) bool {
	for _, b := range blocked {
		if b.IsAllDay {
			return true
		}
		if b.Range != nil && b.Range.Start <= slot && slot < b.Range.End {
			return true
		}
	}
	return false
}

// IsBookable reports whether no active booking occupies (provider, date, time).
// The booking service calls this again at confirmation time: the slot list a
// client selected from may have gone stale since it was resolved.
func IsBookable(providerID uuid.UUID, date string, t TimeOfDay, bookings []Booking) bool {
	for _, b := range bookings {
		if b.Active && b.ProviderID == providerID && b.Date == date && b.Time == t {
			return false
		}
	}
	return true
}
