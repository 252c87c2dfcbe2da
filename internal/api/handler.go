package api

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/rrl-racing/voting-bot/internal/service"
	"go.uber.org/zap"
)

const (
	weekCommandPrefix = "KW "
	startCommand      = "start"
	reminderCommand   = "send-reminder"
	debugStoreCommand = "debug-store-msg-ids"
	debugLoadCommand  = "debug-load-msg-ids"

	invalidWeekReply = `Invalid week number format. Please use "KW [number]".`
)

// CommandHandler dispatches inbound channel messages to the poll service.
// Only messages in the designated voting channel are considered.
type CommandHandler struct {
	svc       *service.PollService
	transport service.Transport
	l         *zap.Logger
	channelID string
}

func New(svc *service.PollService, transport service.Transport, l *zap.Logger, channelID string) *CommandHandler {
	return &CommandHandler{
		svc:       svc,
		transport: transport,
		l:         l,
		channelID: channelID,
	}
}

func HandleMessage(h *CommandHandler, event *model.WebSocketEvent, botID string) {
	raw, ok := event.GetData()["post"].(string)
	if !ok {
		h.l.Error("posted event without post payload")
		return
	}
	post := &model.Post{}
	if err := json.Unmarshal([]byte(raw), post); err != nil {
		h.l.Error("error unmarshalling post", zap.Error(err))
		return
	}
	if post.UserId == botID {
		return
	}
	if post.ChannelId != h.channelID {
		return
	}
	h.Dispatch(post.Message, post.UserId)
}

func (h *CommandHandler) Dispatch(message, userID string) {
	text := strings.TrimSpace(message)
	switch {
	case strings.HasPrefix(text, weekCommandPrefix):
		h.l.Info("received week command",
			zap.String("message", text), zap.String("user_id", userID))
		week, err := parseWeekNumber(text)
		if err != nil {
			if _, err := h.transport.SendMessage(invalidWeekReply); err != nil {
				h.l.Error("failed to send validation reply", zap.Error(err))
			}
			return
		}
		if err := h.svc.PostWeek(week); err != nil {
			h.l.Error("failed to post weekly poll", zap.Error(err))
		}
	case strings.EqualFold(text, startCommand):
		h.l.Info("received manual evaluation command", zap.String("user_id", userID))
		if err := h.svc.Evaluate(); err != nil {
			h.l.Error("manual evaluation failed", zap.Error(err))
		}
	case text == reminderCommand:
		h.l.Info("received manual reminder command", zap.String("user_id", userID))
		if err := h.svc.Remind(); err != nil {
			h.l.Error("manual reminder run failed", zap.Error(err))
		}
	case text == debugStoreCommand:
		h.svc.SaveState()
	case text == debugLoadCommand:
		h.svc.RestoreState()
	}
}

func parseWeekNumber(text string) (int, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(fields[1])
}
