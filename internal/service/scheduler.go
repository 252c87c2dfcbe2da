package service

import (
	"fmt"
	"time"

	"github.com/rrl-racing/voting-bot/internal/config"
	"go.uber.org/zap"
)

var weekdaysByName = map[string]time.Weekday{
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
	"Sunday":    time.Sunday,
}

// Scheduler is the calendar policy over the poll service. Each trigger is
// edge-triggered on its scheduled minute: the tick driver may poll as often
// as it likes without causing duplicate posts.
type Scheduler struct {
	svc *PollService
	l   *zap.Logger

	pollDay                  time.Weekday
	pollHour, pollMinute     int
	remindHour, remindMinute int
	closeHour, closeMinute   int

	lastWeekly     time.Time
	lastReminder   time.Time
	lastEvaluation time.Time
}

func NewScheduler(cfg *config.Config, svc *PollService, l *zap.Logger) (*Scheduler, error) {
	pollDay, ok := weekdaysByName[cfg.PollWeekday]
	if !ok {
		return nil, fmt.Errorf("scheduler: unknown poll weekday %q", cfg.PollWeekday)
	}
	pollAt, err := time.Parse("15:04", cfg.PollTime)
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid poll time %q: %w", cfg.PollTime, err)
	}
	closeAt, err := time.Parse("15:04", cfg.ClosingTime)
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid closing time %q: %w", cfg.ClosingTime, err)
	}
	remindAt := closeAt.Add(-time.Hour)

	return &Scheduler{
		svc:          svc,
		l:            l,
		pollDay:      pollDay,
		pollHour:     pollAt.Hour(),
		pollMinute:   pollAt.Minute(),
		remindHour:   remindAt.Hour(),
		remindMinute: remindAt.Minute(),
		closeHour:    closeAt.Hour(),
		closeMinute:  closeAt.Minute(),
	}, nil
}

// Tick evaluates the three daily checks for the given wall-clock instant.
// The checks are independent and each fires at most once per scheduled
// instant.
func (sc *Scheduler) Tick(now time.Time) {
	minute := now.Truncate(time.Minute)

	if now.Weekday() == sc.pollDay && sc.due(minute, sc.pollHour, sc.pollMinute, &sc.lastWeekly) {
		_, week := now.ISOWeek()
		sc.l.Info("weekly poll trigger fired", zap.Int("next_week", week+1))
		if err := sc.svc.PostWeek(week + 1); err != nil {
			sc.l.Error("scheduled weekly poll failed", zap.Error(err))
		}
	}

	if sc.due(minute, sc.remindHour, sc.remindMinute, &sc.lastReminder) {
		sc.l.Info("reminder trigger fired")
		if err := sc.svc.Remind(); err != nil {
			sc.l.Error("scheduled reminder run failed", zap.Error(err))
		}
	}

	if sc.due(minute, sc.closeHour, sc.closeMinute, &sc.lastEvaluation) {
		sc.l.Info("evaluation trigger fired")
		if err := sc.svc.Evaluate(); err != nil {
			sc.l.Error("scheduled evaluation failed", zap.Error(err))
		}
	}
}

// due reports whether the job scheduled at hour:min fires in this minute,
// remembering the instant so repeated ticks within the minute fire once.
func (sc *Scheduler) due(minute time.Time, hour, min int, last *time.Time) bool {
	if minute.Hour() != hour || minute.Minute() != min {
		return false
	}
	if last.Equal(minute) {
		return false
	}
	*last = minute
	return true
}
