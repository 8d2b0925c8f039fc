// Package notifier provides a webhook client for community announcements.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Howards254/maathai-innovation-catalyst/internal/config"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

// Notifier is the announcement surface the services depend on.
type Notifier interface {
	AnnounceBadge(username, tier string, points int) error
	AnnounceMilestone(campaignTitle string, percent, planted, target int) error
	AnnounceChallengeCompletion(username, challengeTitle string, reward int) error
}

// Client posts announcements to the community chat webhook.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	log        *logger.Logger
}

// NewClient creates a new webhook client.
func NewClient(cfg *config.CommunityConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    cfg.Enabled,
		log:        log,
	}
}

// Message represents a webhook message payload.
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Fallback string  `json:"fallback,omitempty"`
	Color    string  `json:"color,omitempty"`
	Title    string  `json:"title,omitempty"`
	Text     string  `json:"text,omitempty"`
	Fields   []Field `json:"fields,omitempty"`
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// SendMessage sends a message to the community webhook.
func (c *Client) SendMessage(msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Community announcements are disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("channel", msg.Channel).
		Msg("Sent community announcement")

	return nil
}

// AnnounceBadge announces a newly earned badge tier.
func (c *Client) AnnounceBadge(username, tier string, points int) error {
	return c.SendMessage(&Message{
		Attachments: []Attachment{
			{
				Fallback: fmt.Sprintf("%s earned the %s badge", username, tier),
				Color:    "#2e7d32",
				Title:    "🌱 New badge earned!",
				Text:     fmt.Sprintf("**@%s** just earned the **%s** badge!", username, tier),
				Fields: []Field{
					{Short: true, Title: "Badge", Value: tier},
					{Short: true, Title: "Total Points", Value: fmt.Sprintf("%d", points)},
				},
			},
		},
	})
}

// AnnounceMilestone announces a campaign crossing a progress milestone.
func (c *Client) AnnounceMilestone(campaignTitle string, percent, planted, target int) error {
	return c.SendMessage(&Message{
		Attachments: []Attachment{
			{
				Fallback: fmt.Sprintf("%s reached %d%%", campaignTitle, percent),
				Color:    "#1b5e20",
				Title:    fmt.Sprintf("🌳 Campaign milestone: %d%%", percent),
				Text:     fmt.Sprintf("**%s** has reached **%d%%** of its goal!", campaignTitle, percent),
				Fields: []Field{
					{Short: true, Title: "Trees Planted", Value: fmt.Sprintf("%d", planted)},
					{Short: true, Title: "Target", Value: fmt.Sprintf("%d", target)},
				},
			},
		},
	})
}

// AnnounceChallengeCompletion announces a user completing a challenge.
func (c *Client) AnnounceChallengeCompletion(username, challengeTitle string, reward int) error {
	return c.SendMessage(&Message{
		Attachments: []Attachment{
			{
				Fallback: fmt.Sprintf("%s completed %s", username, challengeTitle),
				Color:    "#388e3c",
				Title:    "🏆 Challenge completed!",
				Text:     fmt.Sprintf("**@%s** completed **%s** and earned **%d** points!", username, challengeTitle, reward),
			},
		},
	})
}
