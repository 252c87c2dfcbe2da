package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/rrl-racing/voting-bot/internal/models"
)

type Config struct {
	BotToken  string `yaml:"BOT_TOKEN"  env:"BOT_TOKEN"`
	MmURL     string `yaml:"MM_URL"     env:"MM_URL"`
	MmWsURL   string `yaml:"MM_WS_URL"  env:"MM_WS_URL"`
	ChannelID string `yaml:"CHANNEL_ID" env:"CHANNEL_ID"`
	LogLevel  string `yaml:"LOG_LEVEL"  env:"LOG_LEVEL" env-default:"debug"`

	RoleMention   string `yaml:"ROLE_MENTION"   env:"ROLE_MENTION"   env-default:"@here"`
	StorageDir    string `yaml:"STORAGE_DIR"    env:"STORAGE_DIR"    env-default:"message_ids_storage"`
	RosterFile    string `yaml:"ROSTER_FILE"    env:"ROSTER_FILE"    env-default:"roster.json"`
	ReminderImage string `yaml:"REMINDER_IMAGE" env:"REMINDER_IMAGE"`

	MinRacers   int    `yaml:"MIN_RACERS"   env:"MIN_RACERS"   env-default:"3"`
	PollWeekday string `yaml:"POLL_WEEKDAY" env:"POLL_WEEKDAY" env-default:"Sunday"`
	PollTime    string `yaml:"POLL_TIME"    env:"POLL_TIME"    env-default:"10:00"`
	ClosingTime string `yaml:"CLOSING_TIME" env:"CLOSING_TIME" env-default:"15:00"`

	// Slots are marker:label pairs in chart order, e.g. "six:18:00".
	Slots             []string `yaml:"SLOTS" env:"SLOTS" env-separator:"," env-default:"six:18:00,seven:19:00,eight:20:00"`
	UnavailableMarker string   `yaml:"UNAVAILABLE_MARKER" env:"UNAVAILABLE_MARKER" env-default:"x"`

	// Weekdays are the localized weekday labels, Monday first.
	Weekdays []string `yaml:"WEEKDAYS" env:"WEEKDAYS" env-separator:"," env-default:"Montag,Dienstag,Mittwoch,Donnerstag,Freitag,Samstag,Sonntag"`
}

func New() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, err
	}
	if len(config.Weekdays) != 7 {
		return nil, fmt.Errorf("config: %w, got %d", models.ErrNoWeekdayLabels, len(config.Weekdays))
	}
	return &config, nil
}

// Timeslots parses the configured marker:label pairs, preserving order.
func (c *Config) Timeslots() ([]models.Timeslot, error) {
	if len(c.Slots) == 0 {
		return nil, fmt.Errorf("config: %w", models.ErrNoTimeslots)
	}
	slots := make([]models.Timeslot, len(c.Slots))
	for i, raw := range c.Slots {
		parts := strings.SplitN(raw, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("config: invalid timeslot %q, expected marker:label", raw)
		}
		slots[i] = models.Timeslot{Marker: parts[0], Label: parts[1]}
	}
	return slots, nil
}

// DayLabel maps a date to its localized weekday label.
func (c *Config) DayLabel(t time.Time) string {
	return c.Weekdays[(int(t.Weekday())+6)%7]
}
