package sse

import "time"

// Client describes a connected stream client.
type Client struct {
	ID          string            `json:"id"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ConnectedAt time.Time         `json:"connected_at"`
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMetadata adds a metadata key-value pair to the client.
func WithMetadata(key, value string) ClientOption {
	return func(c *Client) {
		if value == "" {
			return
		}
		if c.Metadata == nil {
			c.Metadata = make(map[string]string)
		}
		c.Metadata[key] = value
	}
}

// NewClient creates a client record.
func NewClient(id string, opts ...ClientOption) *Client {
	c := &Client{ID: id, ConnectedAt: time.Now()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
