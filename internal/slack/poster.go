// Package slack posts practice results to a manager channel.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/doorstep/internal/domain"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// NotifySessionSaved posts a short summary of a saved session.
func (p *Poster) NotifySessionSaved(ctx context.Context, s domain.SessionSummary) error {
	text := formatSessionMessage(s)

	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{
						"type": "mrkdwn",
						"text": "Session " + s.ID.String(),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	ts, err := p.post(ctx, body)
	if err != nil {
		return err
	}
	p.logger.Info("posted session to slack", "ts", ts, "session_id", s.ID, "rep", s.RepName)
	return nil
}

func (p *Poster) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}
	return slackResp.TS, nil
}

func formatSessionMessage(s domain.SessionSummary) string {
	var sb strings.Builder
	a := s.Analysis

	fmt.Fprintf(&sb, "*Practice session:* %s scored *%d/100*\n", s.RepName, a.Overall)
	fmt.Fprintf(&sb, "*Duration:* %s | *Rep messages:* %d\n",
		(time.Duration(s.DurationSeconds) * time.Second).String(), s.RepMessageCount)

	var cats []string
	for _, cat := range domain.Categories {
		if score, ok := a.CategoryScoreOf(cat); ok {
			cats = append(cats, fmt.Sprintf("%s %d", cat, score))
		}
	}
	if len(cats) > 0 {
		fmt.Fprintf(&sb, "*Breakdown:* %s\n", strings.Join(cats, " · "))
	}

	if a.KeyStrength != "" {
		fmt.Fprintf(&sb, "*Strength:* %s\n", a.KeyStrength)
	}
	if a.KeyImprovement != "" {
		fmt.Fprintf(&sb, "*Work on:* %s\n", a.KeyImprovement)
	}
	return strings.TrimRight(sb.String(), "\n")
}
