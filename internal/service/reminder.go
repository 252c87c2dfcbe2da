package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rrl-racing/voting-bot/internal/models"
	"go.uber.org/zap"
)

const reminderText = "Erinnerung: die Abstimmung für heute schließt in einer Stunde. Bitte reagiert noch auf die Tagesnachricht."

// Remind DMs every non-responder for today. Each recipient is handled
// independently: one failed DM never blocks the rest of the batch.
func (s *PollService) Remind() error {
	today := s.cfg.DayLabel(s.clock.Now())
	tally, err := s.Tally(today)
	if err != nil {
		if errors.Is(err, models.ErrDayMessageNotFound) {
			s.l.Warn("no poll message for today, skipping reminders",
				zap.String("day", today), zap.Error(err))
			return nil
		}
		return fmt.Errorf("service: failed to tally %q: %w", today, err)
	}
	if len(tally.NonResponders) == 0 {
		s.l.Info("everyone responded, no reminders to send", zap.String("day", today))
		return nil
	}

	members, err := s.transport.ChannelMembers()
	if err != nil {
		return fmt.Errorf("service: failed to resolve channel members: %w", err)
	}
	idByHandle := make(map[string]string, len(members))
	for _, member := range members {
		idByHandle[member.Handle] = member.ID
	}

	filename, image := s.reminderAttachment()
	for _, handle := range tally.NonResponders {
		userID, ok := idByHandle[handle]
		if !ok {
			s.l.Warn("non-responder not resolvable to a member", zap.String("handle", handle))
			continue
		}
		if err := s.transport.SendDirect(userID, reminderText, filename, image); err != nil {
			s.l.Error("failed to send reminder",
				zap.String("handle", handle), zap.Error(err))
			continue
		}
		s.l.Debug("sent reminder", zap.String("handle", handle))
	}
	s.l.Info("reminder batch finished",
		zap.String("day", today), zap.Int("recipients", len(tally.NonResponders)))
	return nil
}

func (s *PollService) reminderAttachment() (string, []byte) {
	if s.cfg.ReminderImage == "" {
		return "", nil
	}
	data, err := os.ReadFile(s.cfg.ReminderImage)
	if err != nil {
		s.l.Warn("reminder image unreadable, sending text only", zap.Error(err))
		return "", nil
	}
	return filepath.Base(s.cfg.ReminderImage), data
}
