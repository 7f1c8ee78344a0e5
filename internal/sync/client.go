package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// Client sends queued workout actions to the LiftLog server over HTTP.
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates an HTTP client for the LiftLog server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Send POSTs one action to the server's sync endpoint. A transport failure
// or non-2xx status is an error; the caller decides whether to retry.
func (c *Client) Send(ctx context.Context, action models.ActionType, payload json.RawMessage) error {
	body, err := json.Marshal(models.SyncRequest{Action: action, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/sync", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending %s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s rejected (status %d): %s", action, resp.StatusCode, msg)
	}
	return nil
}
