package estimate

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3/client"

	"plan-takeoff/internal/export"
)

// Client posts handoffs to a remote inbox.
type Client struct {
	baseURL string
	http    *client.Client
}

// NewClient creates a client for the inbox at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	cc := client.New()
	cc.SetTimeout(timeout)
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: cc}
}

// Handoff posts p to the inbox. Its signature matches export.HandoffFunc.
func (c *Client) Handoff(p export.Payload) error {
	resp, err := c.http.Post(c.baseURL+"/handoffs", client.Config{Body: p})
	if err != nil {
		return fmt.Errorf("post handoff: %w", err)
	}
	defer resp.Close()

	if resp.StatusCode() != 201 {
		return fmt.Errorf("inbox answered %d: %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}
	return nil
}
