package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPSender posts events to an event-ingest API at {baseURL}/e/{eventKey}.
type HTTPSender struct {
	endpoint string
	client   *http.Client
}

func NewHTTPSender(baseURL, eventKey string, timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		endpoint: strings.TrimRight(baseURL, "/") + "/e/" + url.PathEscape(eventKey),
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSender) Send(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending event %s: %w", event.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("event api error (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
