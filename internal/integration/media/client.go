// Copyright (c) 2026 Atelier. All rights reserved.

/*
Package media calls the external thumbnail pipeline.

The pipeline scrapes an external page's preview image, resizes it into the
small and high-DPI variants and stores them on the CDN. This client only
carries the calling contract (works.Thumbnailer); the generation itself runs
out of process.
*/
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const requestTimeout = 30 * time.Second

// Client talks to the media service's scrape endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

type scrapeRequest struct {
	URL string `json:"url"`
}

type scrapeResponse struct {
	SmallThumbnailURL   string `json:"smallThumbnailUrl"`
	HighDPIThumbnailURL string `json:"highDpiThumbnailUrl"`
}

// ScrapeThumbnails asks the media service to derive the thumbnail pair for
// an external page URL.
func (client *Client) ScrapeThumbnails(ctx context.Context, pageURL string) (string, string, error) {
	payload, err := json.Marshal(scrapeRequest{URL: pageURL})
	if err != nil {
		return "", "", fmt.Errorf("media: marshal scrape request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+"/scrape", bytes.NewReader(payload))
	if err != nil {
		return "", "", fmt.Errorf("media: build scrape request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		client.logger.Warn("media_scrape_failed",
			slog.String("url", pageURL),
			slog.Any("error", err),
		)
		return "", "", fmt.Errorf("media: scrape %q: %w", pageURL, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		client.logger.Warn("media_scrape_failed",
			slog.String("url", pageURL),
			slog.Int("status", response.StatusCode),
		)
		return "", "", fmt.Errorf("media: scrape %q returned %d: %s", pageURL, response.StatusCode, body)
	}

	var result scrapeResponse
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return "", "", fmt.Errorf("media: decode scrape response: %w", err)
	}

	if result.SmallThumbnailURL == "" || result.HighDPIThumbnailURL == "" {
		return "", "", fmt.Errorf("media: scrape %q returned an incomplete thumbnail pair", pageURL)
	}
	return result.SmallThumbnailURL, result.HighDPIThumbnailURL, nil
}
