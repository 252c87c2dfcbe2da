package api

import (
	"fmt"
	"net/http"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/rrl-racing/voting-bot/internal/models"
	"github.com/rrl-racing/voting-bot/internal/service"
	"go.uber.org/zap"
)

const membersPerPage = 100

// MattermostTransport implements service.Transport over the Mattermost REST
// client. All outbound chat I/O goes through here.
type MattermostTransport struct {
	client    *model.Client4
	channelID string
	botID     string
	l         *zap.Logger
}

func NewTransport(client *model.Client4, channelID, botID string, l *zap.Logger) *MattermostTransport {
	return &MattermostTransport{
		client:    client,
		channelID: channelID,
		botID:     botID,
		l:         l,
	}
}

func (t *MattermostTransport) SendMessage(text string) (string, error) {
	post, resp, err := t.client.CreatePost(&model.Post{
		ChannelId: t.channelID,
		Message:   text,
	})
	if err != nil {
		return "", fmt.Errorf("transport: failed to create post: %w", err)
	}
	t.l.Debug("sent message",
		zap.String("post_id", post.Id),
		zap.Int("status_code", resp.StatusCode))
	return post.Id, nil
}

func (t *MattermostTransport) SendFile(filename string, data []byte, message string) (string, error) {
	upload, _, err := t.client.UploadFile(data, t.channelID, filename)
	if err != nil {
		return "", fmt.Errorf("transport: failed to upload file: %w", err)
	}
	if len(upload.FileInfos) == 0 {
		return "", fmt.Errorf("transport: upload of %s returned no file info", filename)
	}
	post, _, err := t.client.CreatePost(&model.Post{
		ChannelId: t.channelID,
		Message:   message,
		FileIds:   []string{upload.FileInfos[0].Id},
	})
	if err != nil {
		return "", fmt.Errorf("transport: failed to create file post: %w", err)
	}
	t.l.Debug("sent file", zap.String("post_id", post.Id), zap.String("filename", filename))
	return post.Id, nil
}

func (t *MattermostTransport) FetchMessage(id string) error {
	_, resp, err := t.client.GetPost(id, "")
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("transport: post %s: %w", id, models.ErrMessageNotFound)
		}
		return fmt.Errorf("transport: failed to fetch post %s: %w", id, err)
	}
	return nil
}

func (t *MattermostTransport) DeleteMessage(id string) error {
	if _, err := t.client.DeletePost(id); err != nil {
		return fmt.Errorf("transport: failed to delete post %s: %w", id, err)
	}
	return nil
}

func (t *MattermostTransport) Reactions(messageID string) ([]service.Reaction, error) {
	reactions, _, err := t.client.GetReactions(messageID)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to list reactions: %w", err)
	}
	handles := make(map[string]string)
	out := make([]service.Reaction, 0, len(reactions))
	for _, reaction := range reactions {
		handle, ok := handles[reaction.UserId]
		if !ok {
			user, _, err := t.client.GetUser(reaction.UserId, "")
			if err != nil {
				t.l.Warn("failed to resolve reacting user",
					zap.String("user_id", reaction.UserId), zap.Error(err))
				continue
			}
			handle = user.Username
			handles[reaction.UserId] = handle
		}
		out = append(out, service.Reaction{Marker: reaction.EmojiName, Handle: handle})
	}
	return out, nil
}

func (t *MattermostTransport) ChannelMembers() ([]service.Member, error) {
	var out []service.Member
	for page := 0; ; page++ {
		members, _, err := t.client.GetChannelMembers(t.channelID, page, membersPerPage, "")
		if err != nil {
			return nil, fmt.Errorf("transport: failed to list channel members: %w", err)
		}
		if len(members) == 0 {
			break
		}
		for _, member := range members {
			user, _, err := t.client.GetUser(member.UserId, "")
			if err != nil {
				t.l.Warn("failed to resolve channel member",
					zap.String("user_id", member.UserId), zap.Error(err))
				continue
			}
			if user.IsBot || user.Id == t.botID {
				continue
			}
			out = append(out, service.Member{ID: user.Id, Handle: user.Username})
		}
		if len(members) < membersPerPage {
			break
		}
	}
	return out, nil
}

func (t *MattermostTransport) SendDirect(userID, text, filename string, data []byte) error {
	channel, _, err := t.client.CreateDirectChannel(t.botID, userID)
	if err != nil {
		return fmt.Errorf("transport: failed to open direct channel: %w", err)
	}
	post := &model.Post{ChannelId: channel.Id, Message: text}
	if len(data) > 0 {
		upload, _, err := t.client.UploadFile(data, channel.Id, filename)
		if err != nil {
			t.l.Warn("failed to upload direct message attachment",
				zap.String("user_id", userID), zap.Error(err))
		} else if len(upload.FileInfos) > 0 {
			post.FileIds = []string{upload.FileInfos[0].Id}
		}
	}
	if _, _, err := t.client.CreatePost(post); err != nil {
		return fmt.Errorf("transport: failed to send direct message: %w", err)
	}
	return nil
}
