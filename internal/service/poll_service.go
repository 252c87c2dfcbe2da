package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/rrl-racing/voting-bot/internal/config"
	"github.com/rrl-racing/voting-bot/internal/models"
	"github.com/rrl-racing/voting-bot/internal/repository"
	"go.uber.org/zap"
)

// PollService owns the voting lifecycle: posting the weekly poll, tallying
// reactions, reminding non-voters and publishing the result chart. It is
// driven from a single event loop, so its state needs no locking.
type PollService struct {
	cfg       *config.Config
	repo      *repository.SnapshotRepository
	transport Transport
	roster    models.Roster
	slots     []models.Timeslot
	botHandle string
	clock     Clock
	l         *zap.Logger

	poll         *models.WeekPoll
	prevResultID string
}

func New(cfg *config.Config, repo *repository.SnapshotRepository, transport Transport,
	roster models.Roster, botHandle string, l *zap.Logger) (*PollService, error) {
	slots, err := cfg.Timeslots()
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if len(cfg.Weekdays) != 7 {
		return nil, fmt.Errorf("service: %w", models.ErrNoWeekdayLabels)
	}
	return &PollService{
		cfg:       cfg,
		repo:      repo,
		transport: transport,
		roster:    roster,
		slots:     slots,
		botHandle: botHandle,
		clock:     SystemClock{},
		l:         l,
		poll:      &models.WeekPoll{DayMessages: make(map[string]string)},
	}, nil
}

// RestoreState loads the latest persisted snapshots. Persistence is a
// best-effort cache: failures are logged and the service continues empty.
func (s *PollService) RestoreState() {
	ids, err := s.repo.LoadDayMessages()
	if err != nil {
		s.l.Warn("failed to load day message snapshot", zap.Error(err))
	} else if len(ids) > 0 {
		s.poll.DayMessages = ids
		s.l.Info("restored day message ids", zap.Int("count", len(ids)))
	}

	resultID, err := s.repo.LoadResultMessage()
	if err != nil {
		s.l.Warn("failed to load result message snapshot", zap.Error(err))
	} else if resultID != "" {
		s.prevResultID = resultID
		s.l.Info("restored result message id", zap.String("message_id", resultID))
	}
}

// SaveState writes both snapshot families. Called on shutdown and on the
// debug command; failures are logged, never fatal.
func (s *PollService) SaveState() {
	if err := s.repo.SaveDayMessages(s.poll.DayMessages); err != nil {
		s.l.Error("failed to save day message snapshot", zap.Error(err))
	}
	if err := s.repo.SaveResultMessage(s.prevResultID); err != nil {
		s.l.Error("failed to save result message snapshot", zap.Error(err))
	}
}

// weekStart returns the Monday of the given ISO week. Week 1 starts on the
// Monday of the week containing January 4th: when January 1st falls after
// Thursday the start advances to the next Monday, otherwise it rolls back to
// the preceding one.
func weekStart(year, week int) time.Time {
	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	idx := (int(first.Weekday()) + 6) % 7
	if idx > 3 {
		first = first.AddDate(0, 0, 7-idx)
	} else {
		first = first.AddDate(0, 0, -idx)
	}
	return first.AddDate(0, 0, (week-1)*7)
}

// PostWeek announces the poll for the given calendar week: a role mention,
// an info message with the voting rules, then one placeholder message per
// day. The day-message map is replaced wholesale so it never holds entries
// from two different weeks. Week numbers are accepted as given.
func (s *PollService) PostWeek(week int) error {
	start := weekStart(s.clock.Now().Year(), week)
	s.l.Info("posting weekly poll",
		zap.Int("week", week),
		zap.String("monday", start.Format("2006-01-02")))

	if _, err := s.transport.SendMessage(s.cfg.RoleMention); err != nil {
		return fmt.Errorf("service: failed to send role mention: %w", err)
	}
	if _, err := s.transport.SendMessage(s.infoMessage(week)); err != nil {
		return fmt.Errorf("service: failed to send info message: %w", err)
	}

	dayIDs := make(map[string]string, 7)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		label := s.cfg.DayLabel(day)
		id, err := s.transport.SendMessage(fmt.Sprintf("%s %s", label, day.Format("02.01.")))
		if err != nil {
			return fmt.Errorf("service: failed to post day message for %s: %w", label, err)
		}
		dayIDs[label] = id
	}
	s.poll = &models.WeekPoll{WeekNumber: week, DayMessages: dayIDs}

	if err := s.repo.SaveDayMessages(dayIDs); err != nil {
		s.l.Error("failed to save day message snapshot", zap.Error(err))
	}
	s.l.Info("weekly poll posted", zap.Int("week", week))
	return nil
}

func (s *PollService) infoMessage(week int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#### KW %d\n", week)
	b.WriteString("Bitte reagiert auf die Tage, an denen ihr an einem Rennen teilnehmen könnt.\n")
	fmt.Fprintf(&b, ":white_check_mark: %s Uhr und %d Teilnehmer\n", s.cfg.ClosingTime, s.cfg.MinRacers)
	b.WriteString("Die Zeiten sind wie folgt:\n")
	for _, slot := range s.slots {
		fmt.Fprintf(&b, ":%s: - %s\n", slot.Marker, slot.Label)
	}
	fmt.Fprintf(&b, ":%s: - nicht verfügbar\n", s.cfg.UnavailableMarker)
	return b.String()
}
