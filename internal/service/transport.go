package service

// Reaction is one (marker, reactor) pair read from a poll message. The same
// pair may appear more than once when the backend pages reactions; consumers
// merge with set semantics.
type Reaction struct {
	Marker string
	Handle string
}

// Member is a currently resolvable channel member.
type Member struct {
	ID     string
	Handle string
}

// Transport is the chat backend as seen by the core. The service never holds
// a live connection itself; all network I/O lives behind this interface.
type Transport interface {
	// SendMessage posts text to the voting channel and returns the new
	// message id.
	SendMessage(text string) (string, error)
	// SendFile posts a file with an accompanying message to the voting
	// channel and returns the new message id.
	SendFile(filename string, data []byte, message string) (string, error)
	// FetchMessage verifies a message still exists. Returns
	// models.ErrMessageNotFound when it was deleted or the id is stale.
	FetchMessage(id string) error
	DeleteMessage(id string) error
	// Reactions lists all reactions on a message as (marker, handle) pairs.
	Reactions(messageID string) ([]Reaction, error)
	// ChannelMembers resolves the current members of the voting channel,
	// excluding bots.
	ChannelMembers() ([]Member, error)
	// SendDirect sends a direct message to a user, optionally with a file
	// attached (data may be nil).
	SendDirect(userID, text, filename string, data []byte) error
}
