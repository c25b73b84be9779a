package alerts

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
)

// ErrNoToken returned when alerts are attempted without a bot token
var ErrNoToken = errors.New("slack bot token not configured")

// Delivery where a message landed
type Delivery struct {
	Channel   string `json:"channel"`
	Timestamp string `json:"ts"`
}

// BotInfo identity of the configured bot
type BotInfo struct {
	BotID  string `json:"botId"`
	UserID string `json:"userId"`
	Team   string `json:"team"`
	URL    string `json:"url"`
}

// Sender delivers direct messages.
type Sender interface {
	SendDM(ctx context.Context, userID string, msg Message) (Delivery, error)
}

// SlackSender sends direct messages through the Slack Web API.
type SlackSender struct {
	client *slack.Client
}

// NewSlackSender creates a sender for the given bot token.
func NewSlackSender(token string, opts ...slack.Option) *SlackSender {
	return &SlackSender{client: slack.New(token, opts...)}
}

// SendDM opens the IM channel with userID and posts msg there.
func (s *SlackSender) SendDM(ctx context.Context, userID string, msg Message) (Delivery, error) {
	if userID == "" {
		return Delivery{}, errors.New("user id is required")
	}
	ch, _, _, err := s.client.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{userID},
	})
	if err != nil {
		return Delivery{}, fmt.Errorf("failed to open DM: %w", err)
	}
	if ch == nil || ch.ID == "" {
		return Delivery{}, errors.New("failed to open DM: no channel returned")
	}

	options := []slack.MsgOption{slack.MsgOptionText(msg.Text, false)}
	if len(msg.Blocks) > 0 {
		options = append(options, slack.MsgOptionBlocks(msg.Blocks...))
	}
	channel, ts, err := s.client.PostMessageContext(ctx, ch.ID, options...)
	if err != nil {
		return Delivery{}, fmt.Errorf("failed to send message: %w", err)
	}
	return Delivery{Channel: channel, Timestamp: ts}, nil
}

// TestConnection checks the token with auth.test.
func (s *SlackSender) TestConnection(ctx context.Context) (*BotInfo, error) {
	resp, err := s.client.AuthTestContext(ctx)
	if err != nil {
		return nil, err
	}
	return &BotInfo{BotID: resp.BotID, UserID: resp.UserID, Team: resp.Team, URL: resp.URL}, nil
}
