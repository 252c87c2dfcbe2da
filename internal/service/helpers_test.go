package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/rrl-racing/voting-bot/internal/config"
	"github.com/rrl-racing/voting-bot/internal/models"
	"github.com/rrl-racing/voting-bot/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

type sentFile struct {
	filename string
	message  string
	data     []byte
}

type directMessage struct {
	userID   string
	text     string
	filename string
	data     []byte
}

// fakeTransport records every outbound call and lets tests inject failures
// and missing messages.
type fakeTransport struct {
	nextID     int
	messages   []string
	messageIDs []string
	files      []sentFile
	fileIDs    []string
	deleted    []string
	reactions  map[string][]Reaction
	members    []Member
	directs    []directMessage
	missing    map[string]bool

	failSendMessage bool
	failSendFile    bool
	failDirectTo    map[string]bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		reactions:    make(map[string][]Reaction),
		missing:      make(map[string]bool),
		failDirectTo: make(map[string]bool),
	}
}

func (f *fakeTransport) SendMessage(text string) (string, error) {
	if f.failSendMessage {
		return "", fmt.Errorf("send refused")
	}
	f.nextID++
	id := fmt.Sprintf("msg-%d", f.nextID)
	f.messages = append(f.messages, text)
	f.messageIDs = append(f.messageIDs, id)
	return id, nil
}

func (f *fakeTransport) SendFile(filename string, data []byte, message string) (string, error) {
	if f.failSendFile {
		return "", fmt.Errorf("upload refused")
	}
	f.nextID++
	id := fmt.Sprintf("file-%d", f.nextID)
	f.files = append(f.files, sentFile{filename: filename, message: message, data: data})
	f.fileIDs = append(f.fileIDs, id)
	return id, nil
}

func (f *fakeTransport) FetchMessage(id string) error {
	if f.missing[id] {
		return fmt.Errorf("fetch %s: %w", id, models.ErrMessageNotFound)
	}
	return nil
}

func (f *fakeTransport) DeleteMessage(id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeTransport) Reactions(messageID string) ([]Reaction, error) {
	return f.reactions[messageID], nil
}

func (f *fakeTransport) ChannelMembers() ([]Member, error) {
	return f.members, nil
}

func (f *fakeTransport) SendDirect(userID, text, filename string, data []byte) error {
	if f.failDirectTo[userID] {
		return fmt.Errorf("dm to %s refused", userID)
	}
	f.directs = append(f.directs, directMessage{userID: userID, text: text, filename: filename, data: data})
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		RoleMention:       "@here",
		MinRacers:         3,
		PollWeekday:       "Sunday",
		PollTime:          "10:00",
		ClosingTime:       "15:00",
		Slots:             []string{"six:18:00", "seven:19:00", "eight:20:00"},
		UnavailableMarker: "x",
		Weekdays:          []string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag", "Sonntag"},
	}
}

func testRoster(handles ...string) models.Roster {
	roster := make(models.Roster, len(handles))
	for i, handle := range handles {
		roster[i] = models.RosterEntry{Handle: handle, DisplayName: handle}
	}
	return roster
}

func membersFor(handles ...string) []Member {
	members := make([]Member, len(handles))
	for i, handle := range handles {
		members[i] = Member{ID: "id-" + handle, Handle: handle}
	}
	return members
}

func newTestService(t *testing.T, transport *fakeTransport, roster models.Roster) (*PollService, *repository.SnapshotRepository) {
	t.Helper()
	repo := repository.New(t.TempDir(), zap.NewNop())
	svc, err := New(testConfig(), repo, transport, roster, "votebot", zap.NewNop())
	require.NoError(t, err)
	return svc, repo
}
