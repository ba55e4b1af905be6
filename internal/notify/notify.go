// Package notify posts plain-text run notifications to an ntfy-style endpoint.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Completion summarizes a finished crawl.
type Completion struct {
	Spider    string
	Requested int
	Succeeded int
	Failed    int
	Items     int
	Elapsed   time.Duration
	Err       error
}

// Message renders the completion as one line of text.
func (c Completion) Message() string {
	status := "complete"
	if c.Err != nil {
		status = "aborted: " + c.Err.Error()
	}
	return fmt.Sprintf("sawari %s crawl %s. %d/%d pages succeeded, %d failed, %d items in %s.",
		c.Spider, status, c.Succeeded, c.Requested, c.Failed, c.Items, c.Elapsed.Round(time.Second))
}

// SendCompletion posts the completion message to endpoint. An empty endpoint
// disables notifications.
func SendCompletion(ctx context.Context, client *http.Client, endpoint string, c Completion) error {
	if endpoint == "" {
		return nil
	}
	return Send(ctx, client, endpoint, c.Message())
}

// Send sends a message to the requested endpoint using HTTP POST.
func Send(ctx context.Context, client *http.Client, endpoint, message string) error {
	c := client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy notification failed: status=%d", resp.StatusCode)
	}
	return nil
}
