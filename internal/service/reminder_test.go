package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemindSendsToEveryNonResponder(t *testing.T) {
	transport := newFakeTransport()
	svc, _ := newTestService(t, transport, testRoster("a", "b", "c", "d"))
	svc.clock = fakeClock{now: monday15}
	transport.members = membersFor("a", "b", "c", "d")
	seedDay(svc, transport, "Montag", "day-1",
		Reaction{Marker: "seven", Handle: "a"},
	)

	require.NoError(t, svc.Remind())

	require.Len(t, transport.directs, 3)
	var recipients []string
	for _, dm := range transport.directs {
		recipients = append(recipients, dm.userID)
		assert.Equal(t, reminderText, dm.text)
	}
	assert.Equal(t, []string{"id-b", "id-c", "id-d"}, recipients)
}

func TestRemindFailureDoesNotBlockBatch(t *testing.T) {
	transport := newFakeTransport()
	svc, _ := newTestService(t, transport, testRoster("a", "b", "c", "d"))
	svc.clock = fakeClock{now: monday15}
	transport.members = membersFor("a", "b", "c", "d")
	transport.failDirectTo["id-c"] = true
	seedDay(svc, transport, "Montag", "day-1",
		Reaction{Marker: "seven", Handle: "a"},
	)

	require.NoError(t, svc.Remind())

	require.Len(t, transport.directs, 2)
	assert.Equal(t, "id-b", transport.directs[0].userID)
	assert.Equal(t, "id-d", transport.directs[1].userID)
}

func TestRemindSkipsWhenEveryoneResponded(t *testing.T) {
	transport := newFakeTransport()
	svc, _ := newTestService(t, transport, testRoster("a", "b"))
	svc.clock = fakeClock{now: monday15}
	transport.members = membersFor("a", "b")
	seedDay(svc, transport, "Montag", "day-1",
		Reaction{Marker: "six", Handle: "a"},
		Reaction{Marker: "x", Handle: "b"},
	)

	require.NoError(t, svc.Remind())
	assert.Empty(t, transport.directs)
}

func TestRemindSkipsWhenNoDayMessage(t *testing.T) {
	transport := newFakeTransport()
	svc, _ := newTestService(t, transport, testRoster("a"))
	svc.clock = fakeClock{now: monday15}

	require.NoError(t, svc.Remind())
	assert.Empty(t, transport.directs)
}

func TestRemindAttachesReminderImage(t *testing.T) {
	transport := newFakeTransport()
	svc, _ := newTestService(t, transport, testRoster("a", "b"))
	svc.clock = fakeClock{now: monday15}
	transport.members = membersFor("a", "b")
	seedDay(svc, transport, "Montag", "day-1",
		Reaction{Marker: "six", Handle: "a"},
	)

	imagePath := filepath.Join(t.TempDir(), "reminder.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("not really a png"), 0o644))
	svc.cfg.ReminderImage = imagePath

	require.NoError(t, svc.Remind())

	require.Len(t, transport.directs, 1)
	assert.Equal(t, "reminder.png", transport.directs[0].filename)
	assert.Equal(t, []byte("not really a png"), transport.directs[0].data)
}

func TestRemindMissingImageSendsTextOnly(t *testing.T) {
	transport := newFakeTransport()
	svc, _ := newTestService(t, transport, testRoster("a", "b"))
	svc.clock = fakeClock{now: monday15}
	transport.members = membersFor("a", "b")
	seedDay(svc, transport, "Montag", "day-1",
		Reaction{Marker: "six", Handle: "a"},
	)
	svc.cfg.ReminderImage = filepath.Join(t.TempDir(), "gone.png")

	require.NoError(t, svc.Remind())

	require.Len(t, transport.directs, 1)
	assert.Empty(t, transport.directs[0].data)
}
