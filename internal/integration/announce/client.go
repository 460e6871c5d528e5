// Copyright (c) 2026 Atelier. All rights reserved.

/*
Package announce posts companion announcements for works to a Discord-style
webhook.

The client implements the works.Announcer contract: failures are reported to
the caller but persistence of the work never depends on them. Whether a
create (POST) or an edit (PATCH) is attempted is gated by the work's
existing external post ID.
*/
package announce

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

	"github.com/atelierhq/atelier/internal/core/works"
)

const requestTimeout = 10 * time.Second

// Client talks to a single webhook endpoint.
type Client struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a webhook client. The webhook URL must carry
// ?wait=true semantics (the endpoint returns the created message as JSON).
func NewClient(webhookURL string, logger *slog.Logger) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// message is the wire payload for both create and edit.
type message struct {
	Content string  `json:"content"`
	Embeds  []embed `json:"embeds,omitempty"`
}

type embed struct {
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	URL         string      `json:"url,omitempty"`
	Image       *embedImage `json:"image,omitempty"`
}

type embedImage struct {
	URL string `json:"url"`
}

// messageResponse carries the only field we need back: the message ID that
// later edits are addressed to.
type messageResponse struct {
	ID string `json:"id"`
}

// PostOrEditWork creates the announcement for a work, or edits the existing
// one when the work already carries an external post ID. Returns the post ID
// to persist on the work.
func (client *Client) PostOrEditWork(ctx context.Context, work *works.Work) (string, error) {
	method := http.MethodPost
	endpoint := client.webhookURL + "?wait=true"
	if work.DiscordID != "" {
		method = http.MethodPatch
		endpoint = fmt.Sprintf("%s/messages/%s", client.webhookURL, work.DiscordID)
	}

	payload, err := json.Marshal(buildMessage(work))
	if err != nil {
		return "", fmt.Errorf("announce: marshal message for %q: %w", work.ID, err)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("announce: build request for %q: %w", work.ID, err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		client.logger.Warn("announce_request_failed",
			slog.String("work_id", work.ID),
			slog.String("method", method),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("announce: %s %q: %w", method, work.ID, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		client.logger.Warn("announce_request_failed",
			slog.String("work_id", work.ID),
			slog.String("method", method),
			slog.Int("status", response.StatusCode),
		)
		return "", fmt.Errorf("announce: %s for %q returned %d: %s", method, work.ID, response.StatusCode, body)
	}

	var result messageResponse
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("announce: decode response for %q: %w", work.ID, err)
	}

	// Edits return the same ID the work already carries; keep it stable
	// even if the endpoint omits it.
	if result.ID == "" {
		result.ID = work.DiscordID
	}
	return result.ID, nil
}

// buildMessage renders the announcement: title line plus one embed carrying
// the work's thumbnail.
func buildMessage(work *works.Work) message {
	weeks := make([]string, len(work.WeekNumbers))
	for i, week := range work.WeekNumbers {
		weeks[i] = fmt.Sprintf("week %d", week)
	}

	msg := message{
		Content: fmt.Sprintf("**%s** — new work for %s", work.Title, strings.Join(weeks, ", ")),
	}

	e := embed{
		Title:       work.Title,
		Description: work.Description,
	}
	if len(work.Items) > 0 {
		e.URL = work.Items[0].URL
	}
	if work.ThumbnailURL != "" {
		e.Image = &embedImage{URL: work.ThumbnailURL}
	}
	msg.Embeds = []embed{e}

	return msg
}
