package core

// Client is the hub-side view of one live connection. The transport layer
// owns the socket; the core only ever addresses the Events channel.
type Client struct {
	Commands chan *Command
	Events   chan *Event

	// done is closed exactly once when the hub discards the connection.
	done chan struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient() *Client {
	return &Client{
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
		done:     make(chan struct{}),
	}
}

// Done is closed when the hub has finished cascade cleanup for this client.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
