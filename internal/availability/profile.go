package availability

import "github.com/google/uuid"

// WorkingRange is a contiguous interval of a day during which a provider
// accepts bookings. Start >= End is tolerated: such a range yields no slots.
type WorkingRange struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// DaySchedule is the weekly template for a single weekday.
type DaySchedule struct {
	DayIndex int            `json:"dayIndex"`
	Ranges   []WorkingRange `json:"ranges"`
	IsActive bool           `json:"isActive"`
}

// BlockedSlot is an ad-hoc exclusion overriding the weekly template for one
// specific date. Entries are immutable once created; providers delete and
// re-add instead of editing. Range is nil iff IsAllDay.
type BlockedSlot struct {
	ID       string        `json:"id"`
	Date     string        `json:"date"`
	IsAllDay bool          `json:"isAllDay"`
	Range    *WorkingRange `json:"range,omitempty"`
	Reason   string        `json:"reason"`
}

// Profile is a provider's availability aggregate: one DaySchedule per weekday
// plus blocked slots in insertion order. All mutators return a new value and
// never error; rejected edits return the input unchanged.
type Profile struct {
	ProviderID   uuid.UUID     `json:"providerId"`
	Schedules    []DaySchedule `json:"schedules"`
	BlockedSlots []BlockedSlot `json:"blockedSlots"`
}

var defaultRange = WorkingRange{Start: 9 * 60, End: 17 * 60}

// DefaultProfile returns the starting template: 09:00-17:00, Monday through
// Friday active.
func DefaultProfile(providerID uuid.UUID) Profile {
	schedules := make([]DaySchedule, 7)
	for i := range schedules {
		schedules[i] = DaySchedule{
			DayIndex: i,
			Ranges:   []WorkingRange{defaultRange},
			IsActive: i >= 1 && i <= 5,
		}
	}
	return Profile{ProviderID: providerID, Schedules: schedules}
}

func (p Profile) clone() Profile {
	out := p
	out.Schedules = make([]DaySchedule, len(p.Schedules))
	for i, s := range p.Schedules {
		out.Schedules[i] = s
		out.Schedules[i].Ranges = append([]WorkingRange(nil), s.Ranges...)
	}
	out.BlockedSlots = append([]BlockedSlot(nil), p.BlockedSlots...)
	return out
}

func (p Profile) dayIdx(dayIndex int) int {
	for i, s := range p.Schedules {
		if s.DayIndex == dayIndex {
			return i
		}
	}
	return -1
}

// Schedule returns the template for a weekday, or false if none exists.
func (p Profile) Schedule(dayIndex int) (DaySchedule, bool) {
	if i := p.dayIdx(dayIndex); i >= 0 {
		return p.Schedules[i], true
	}
	return DaySchedule{}, false
}

// SetDayActive flips a day on or off. Ranges are kept so re-activating
// restores the previous hours.
func (p Profile) SetDayActive(dayIndex int, active bool) Profile {
	i := p.dayIdx(dayIndex)
	if i < 0 {
		return p
	}
	out := p.clone()
	out.Schedules[i].IsActive = active
	return out
}

// AddRange appends a default 09:00-17:00 range to a day. The engine places no
// upper bound on ranges per day.
func (p Profile) AddRange(dayIndex int) Profile {
	i := p.dayIdx(dayIndex)
	if i < 0 {
		return p
	}
	out := p.clone()
	out.Schedules[i].Ranges = append(out.Schedules[i].Ranges, defaultRange)
	return out
}

// RemoveRange deletes one range from a day. Removing the last range is a
// silent no-op: a day never drops to zero ranges once it has any, so an
// active-but-rangeless day cannot arise.
func (p Profile) RemoveRange(dayIndex, rangeIndex int) Profile {
	i := p.dayIdx(dayIndex)
	if i < 0 {
		return p
	}
	ranges := p.Schedules[i].Ranges
	if len(ranges) <= 1 || rangeIndex < 0 || rangeIndex >= len(ranges) {
		return p
	}
	out := p.clone()
	out.Schedules[i].Ranges = append(out.Schedules[i].Ranges[:rangeIndex], out.Schedules[i].Ranges[rangeIndex+1:]...)
	return out
}

// RangeField selects which endpoint UpdateRangeField sets.
type RangeField string

const (
	RangeStart RangeField = "start"
	RangeEnd   RangeField = "end"
)

// UpdateRangeField sets one endpoint of a range. start < end is deliberately
// not checked here: mid-edit states are allowed to be inverted, and the
// generator treats such ranges as producing no slots.
func (p Profile) UpdateRangeField(dayIndex, rangeIndex int, field RangeField, value TimeOfDay) Profile {
	i := p.dayIdx(dayIndex)
	if i < 0 || !value.Valid() {
		return p
	}
	if rangeIndex < 0 || rangeIndex >= len(p.Schedules[i].Ranges) {
		return p
	}
	out := p.clone()
	switch field {
	case RangeStart:
		out.Schedules[i].Ranges[rangeIndex].Start = value
	case RangeEnd:
		out.Schedules[i].Ranges[rangeIndex].End = value
	default:
		return p
	}
	return out
}

// CopyRangesToWeekdays overwrites Monday..Friday with deep copies of the
// source day's ranges and activates each of them. Saturday and Sunday are
// left untouched.
func (p Profile) CopyRangesToWeekdays(sourceDayIndex int) Profile {
	src := p.dayIdx(sourceDayIndex)
	if src < 0 {
		return p
	}
	source := p.Schedules[src].Ranges
	out := p.clone()
	for i, s := range out.Schedules {
		if s.DayIndex < 1 || s.DayIndex > 5 {
			continue
		}
		out.Schedules[i].Ranges = append([]WorkingRange(nil), source...)
		out.Schedules[i].IsActive = true
	}
	return out
}

// AddBlockedSlot appends a blackout entry. Entries missing a date or reason
// are rejected, as are timed entries without a range. start < end is not
// validated, matching the lazy policy for working ranges.
func (p Profile) AddBlockedSlot(blocked BlockedSlot) Profile {
	if blocked.Date == "" || blocked.Reason == "" {
		return p
	}
	if !blocked.IsAllDay && blocked.Range == nil {
		return p
	}
	out := p.clone()
	if blocked.IsAllDay {
		blocked.Range = nil
	} else {
		r := *blocked.Range
		blocked.Range = &r
	}
	out.BlockedSlots = append(out.BlockedSlots, blocked)
	return out
}

// RemoveBlockedSlot deletes a blackout by id. Unknown ids are a no-op.
func (p Profile) RemoveBlockedSlot(id string) Profile {
	idx := -1
	for i, b := range p.BlockedSlots {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return p
	}
	out := p.clone()
	out.BlockedSlots = append(out.BlockedSlots[:idx], out.BlockedSlots[idx+1:]...)
	return out
}
