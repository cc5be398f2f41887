package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandCreateRoom allocates a new room with the sender as host.
	CommandCreateRoom CommandKind = iota
	// CommandJoinRoom adds the sender to an existing waiting room.
	CommandJoinRoom
	// CommandStartGame moves the sender's room into the playing phase.
	CommandStartGame
	// CommandPlayerUpdate replaces the sender's own combat state.
	CommandPlayerUpdate
	// CommandPlayerHit reports damage dealt to another member.
	CommandPlayerHit
)

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	RoomID   string
	TargetID string
	Damage   int
	Update   PlayerUpdate
}
