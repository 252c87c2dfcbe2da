package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const timestampLayout = "2006-01-02_1504"

var (
	dayMessagesPattern   = regexp.MustCompile(`^message_ids_(\d{4}-\d{2}-\d{2}_\d{4})\.json$`)
	resultMessagePattern = regexp.MustCompile(`^result_message_(\d{4}-\d{2}-\d{2}_\d{4})\.txt$`)
)

// SnapshotRepository persists poll state as timestamp-named records on disk.
// Two independent record families exist: the weekday->message-id map and the
// previous result message id. The most recently timestamped record wins on
// load; malformed filenames are skipped and a missing directory counts as
// empty state.
type SnapshotRepository struct {
	dir string
	l   *zap.Logger
}

func New(dir string, l *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		dir: dir,
		l:   l,
	}
}

func (r *SnapshotRepository) SaveDayMessages(ids map[string]string) error {
	if len(ids) == 0 {
		r.l.Info("day message ids empty, nothing to save")
		return nil
	}
	data, err := json.MarshalIndent(ids, "", "    ")
	if err != nil {
		return fmt.Errorf("repository: json marshal error: %w", err)
	}
	return r.write("message_ids_", ".json", data)
}

func (r *SnapshotRepository) LoadDayMessages() (map[string]string, error) {
	data, err := r.latest(dayMessagesPattern)
	if err != nil || data == nil {
		return nil, err
	}
	var ids map[string]string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("repository: json unmarshal error: %w", err)
	}
	return ids, nil
}

func (r *SnapshotRepository) SaveResultMessage(id string) error {
	if id == "" {
		r.l.Info("result message id empty, nothing to save")
		return nil
	}
	return r.write("result_message_", ".txt", []byte(id))
}

func (r *SnapshotRepository) LoadResultMessage() (string, error) {
	data, err := r.latest(resultMessagePattern)
	if err != nil || data == nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (r *SnapshotRepository) write(prefix, ext string, data []byte) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("repository: failed to create storage dir: %w", err)
	}
	name := prefix + time.Now().Format(timestampLayout) + ext
	path := filepath.Join(r.dir, name)
	r.l.Debug("writing snapshot", zap.String("path", path))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("repository: failed to write snapshot: %w", err)
	}
	return nil
}

// latest returns the body of the most recently timestamped record matching
// pattern, or nil when no record exists.
func (r *SnapshotRepository) latest(pattern *regexp.Regexp) ([]byte, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: failed to read storage dir: %w", err)
	}

	var latestName string
	var latestTime time.Time
	for _, entry := range entries {
		m := pattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		ts, err := time.Parse(timestampLayout, m[1])
		if err != nil {
			r.l.Warn("skipping snapshot with unparseable timestamp",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		if latestName == "" || ts.After(latestTime) {
			latestName = entry.Name()
			latestTime = ts
		}
	}
	if latestName == "" {
		return nil, nil
	}

	r.l.Info("loading snapshot", zap.String("file", latestName))
	data, err := os.ReadFile(filepath.Join(r.dir, latestName))
	if err != nil {
		return nil, fmt.Errorf("repository: failed to read snapshot: %w", err)
	}
	return data, nil
}
