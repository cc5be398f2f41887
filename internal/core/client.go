package core

// Client is one connected duelist as seen by the core layer.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 16),
		Events:   make(chan *Event, 16),
	}
}
