package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rrl-racing/voting-bot/internal/models"
	"github.com/rrl-racing/voting-bot/pkg/chart"
	"go.uber.org/zap"
)

// Evaluate closes today's voting: the previous summary is retired, the day
// is re-tallied and a fresh chart is published. At most one summary message
// is live per cycle. A missing day message only skips the cycle.
func (s *PollService) Evaluate() error {
	today := s.cfg.DayLabel(s.clock.Now())
	tally, err := s.Tally(today)
	if err != nil {
		if errors.Is(err, models.ErrDayMessageNotFound) {
			s.l.Warn("no poll message for today, skipping evaluation",
				zap.String("day", today), zap.Error(err))
			return nil
		}
		return fmt.Errorf("service: failed to tally %q: %w", today, err)
	}

	s.retirePreviousResult()

	png, err := chart.Render(today, s.chartColumns(tally), s.cfg.MinRacers)
	if err != nil {
		return fmt.Errorf("service: failed to render result chart: %w", err)
	}

	filename := fmt.Sprintf("%s-%s.png", strings.ToLower(today), uuid.New().String()[:8])
	id, err := s.transport.SendFile(filename, png, fmt.Sprintf("Slots für %s", today))
	if err != nil {
		// The previous pointer stays unset; no retry within this cycle.
		return fmt.Errorf("service: failed to send result chart: %w", err)
	}
	s.prevResultID = id
	if err := s.repo.SaveResultMessage(id); err != nil {
		s.l.Error("failed to save result message snapshot", zap.Error(err))
	}
	s.l.Info("published day result",
		zap.String("day", today), zap.String("message_id", id))
	return nil
}

// retirePreviousResult deletes the last published summary, best-effort. The
// pointer is cleared either way: the message may already be gone.
func (s *PollService) retirePreviousResult() {
	if s.prevResultID == "" {
		return
	}
	if err := s.transport.DeleteMessage(s.prevResultID); err != nil {
		s.l.Warn("failed to delete previous result message",
			zap.String("message_id", s.prevResultID), zap.Error(err))
	}
	s.prevResultID = ""
}

// chartColumns maps the tally to chart columns in configured slot order,
// with roster display names on the blocks.
func (s *PollService) chartColumns(tally *models.DayTally) []chart.SlotColumn {
	columns := make([]chart.SlotColumn, 0, len(s.slots))
	for _, slot := range s.slots {
		voters := tally.SlotVotes[slot.Label]
		names := make([]string, 0, len(voters))
		for _, handle := range voters {
			names = append(names, s.roster.DisplayName(handle))
		}
		columns = append(columns, chart.SlotColumn{Label: slot.Label, Voters: names})
	}
	return columns
}
