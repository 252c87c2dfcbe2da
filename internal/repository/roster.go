package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rrl-racing/voting-bot/internal/models"
)

// LoadRoster reads the static participant roster from a JSON file. The
// roster is loaded once at startup and never changes afterwards.
func LoadRoster(path string) (models.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to read roster file: %w", err)
	}
	var roster models.Roster
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("repository: failed to parse roster file: %w", err)
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("repository: %s: %w", path, models.ErrEmptyRoster)
	}
	return roster, nil
}
