package service

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rrl-racing/voting-bot/internal/models"
	"go.uber.org/zap"
)

// Tally classifies every reaction on the day's poll message. Returns an
// error wrapping models.ErrDayMessageNotFound when no message is recorded
// for the label or the recorded message is gone; both are recoverable and
// only abort the current cycle.
func (s *PollService) Tally(dayLabel string) (*models.DayTally, error) {
	msgID, ok := s.poll.DayMessages[dayLabel]
	if !ok {
		return nil, fmt.Errorf("service: %q: %w", dayLabel, models.ErrDayMessageNotFound)
	}
	if err := s.transport.FetchMessage(msgID); err != nil {
		if errors.Is(err, models.ErrMessageNotFound) {
			return nil, fmt.Errorf("service: message %s for %q is gone: %w",
				msgID, dayLabel, models.ErrDayMessageNotFound)
		}
		return nil, fmt.Errorf("service: failed to fetch day message: %w", err)
	}

	reactions, err := s.transport.Reactions(msgID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list reactions: %w", err)
	}

	slotByMarker := make(map[string]string, len(s.slots))
	slotVotes := make(map[string]map[string]bool, len(s.slots))
	for _, slot := range s.slots {
		slotByMarker[slot.Marker] = slot.Label
		slotVotes[slot.Label] = make(map[string]bool)
	}
	unavailable := make(map[string]bool)

	// Set semantics: repeated pairs from paged reaction listings collapse,
	// and one participant may vote several slots or a slot and unavailable.
	for _, reaction := range reactions {
		if reaction.Handle == s.botHandle {
			continue
		}
		if label, ok := slotByMarker[reaction.Marker]; ok {
			slotVotes[label][reaction.Handle] = true
			continue
		}
		if reaction.Marker == s.cfg.UnavailableMarker {
			unavailable[reaction.Handle] = true
		}
	}

	members, err := s.transport.ChannelMembers()
	if err != nil {
		return nil, fmt.Errorf("service: failed to resolve channel members: %w", err)
	}
	memberHandles := make(map[string]bool, len(members))
	for _, member := range members {
		memberHandles[member.Handle] = true
	}

	tally := &models.DayTally{
		Day:         dayLabel,
		SlotVotes:   make(map[string][]string, len(s.slots)),
		Unavailable: sortedHandles(unavailable),
	}
	responded := make(map[string]bool)
	for label, voters := range slotVotes {
		tally.SlotVotes[label] = sortedHandles(voters)
		for handle := range voters {
			responded[handle] = true
		}
	}
	for handle := range unavailable {
		responded[handle] = true
	}

	// Roster entries that left the channel are dropped silently.
	for _, handle := range s.roster.Handles() {
		if !responded[handle] && memberHandles[handle] {
			tally.NonResponders = append(tally.NonResponders, handle)
		}
	}
	sort.Strings(tally.NonResponders)

	s.l.Debug("tallied day",
		zap.String("day", dayLabel),
		zap.Any("slot_votes", tally.SlotVotes),
		zap.Strings("unavailable", tally.Unavailable),
		zap.Strings("non_responders", tally.NonResponders))
	return tally, nil
}

func sortedHandles(set map[string]bool) []string {
	handles := make([]string, 0, len(set))
	for handle := range set {
		handles = append(handles, handle)
	}
	sort.Strings(handles)
	return handles
}
