// Package actuator notifies the physical signaling channel (door relay,
// LEDs) of entry and exit outcomes. Delivery is best effort: failures are
// logged by the caller and never affect a committed session transition.
package actuator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Command is the physical signal to emit.
type Command string

const (
	CommandEntry Command = "ENTRY"
	CommandExit  Command = "EXIT"
)

// Signaler sends a command to the actuator channel.
type Signaler interface {
	Signal(ctx context.Context, cmd Command) error
}

// Client signals over HTTP with a bounded per-request timeout.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewClient creates an actuator client. timeout bounds each signal attempt.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Signal posts the command to the actuator endpoint.
func (c *Client) Signal(ctx context.Context, cmd Command) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{"command": string(cmd)})
	if err != nil {
		return fmt.Errorf("encode actuator command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/signal", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create actuator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("actuator request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("actuator returned status %d", resp.StatusCode)
	}
	return nil
}

// Noop is used when no actuator is configured.
type Noop struct{}

// Signal does nothing.
func (Noop) Signal(ctx context.Context, cmd Command) error {
	return nil
}
