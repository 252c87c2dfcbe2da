package models

import "errors"

var (
	ErrDayMessageNotFound = errors.New("no poll message recorded for this day")
	ErrMessageNotFound    = errors.New("message not found")
	ErrEmptyRoster        = errors.New("roster is empty")
	ErrNoWeekdayLabels    = errors.New("weekday labels must have exactly 7 entries")
	ErrNoTimeslots        = errors.New("at least one timeslot must be configured")
)

// RosterEntry is one recognized participant. Handle is the chat username,
// DisplayName is what shows up on the result chart.
type RosterEntry struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
}

type Roster []RosterEntry

func (r Roster) Handles() []string {
	handles := make([]string, len(r))
	for i, entry := range r {
		handles[i] = entry.Handle
	}
	return handles
}

func (r Roster) DisplayName(handle string) string {
	for _, entry := range r {
		if entry.Handle == handle {
			return entry.DisplayName
		}
	}
	return handle
}

// Timeslot maps a reaction marker (emoji name) to a time-of-day label.
type Timeslot struct {
	Marker string
	Label  string
}

// WeekPoll is the active voting cycle: one placeholder message per weekday,
// keyed by the localized weekday label. The whole map is replaced when the
// next week's poll is posted, so it never mixes two weeks.
type WeekPoll struct {
	WeekNumber  int
	DayMessages map[string]string
}

// DayTally is the computed classification of all reactions on one day's poll
// message. It is derived on demand and never persisted.
type DayTally struct {
	Day string
	// SlotVotes holds, per timeslot label, every handle that reacted with
	// that slot's marker. A handle may appear under several slots and in
	// Unavailable at the same time.
	SlotVotes     map[string][]string
	Unavailable   []string
	NonResponders []string
}

// Responded returns the union of all slot votes and the unavailable set.
func (t *DayTally) Responded() map[string]bool {
	responded := make(map[string]bool)
	for _, voters := range t.SlotVotes {
		for _, handle := range voters {
			responded[handle] = true
		}
	}
	for _, handle := range t.Unavailable {
		responded[handle] = true
	}
	return responded
}

// QuorumMet reports whether the slot reached the configured minimum number
// of voters.
func (t *DayTally) QuorumMet(slot string, min int) bool {
	return len(t.SlotVotes[slot]) >= min
}
