package chat

// SessionMsg is anything a Session can receive. The set of variants is
// closed: Line, RoomAssigned, LoginAccepted, LoginRejected, AccountCreated,
// AccountRejected, Broadcast, StreamEnded and TransportError.
type SessionMsg interface {
	isSessionMsg()
}

// Line is one frame read from the session's transport, terminator stripped.
type Line struct {
	Data []byte
}

// RoomAssigned is the registry's reply to a join or change request.
type RoomAssigned struct {
	Room *Room
}

// LoginAccepted is the account store's reply to a valid login.
type LoginAccepted struct {
	User string
}

// LoginRejected is the account store's reply to an unknown user or a wrong
// password.
type LoginRejected struct {
	User string
}

// AccountCreated is the account store's reply to a successful create.
type AccountCreated struct {
	User string
}

// AccountRejected is the account store's reply to a create for a user name
// that is already taken.
type AccountRejected struct {
	User string
}

// Broadcast is a line delivered by the session's current room.
type Broadcast struct {
	Data []byte
}

// StreamEnded signals that the transport reached end of stream.
type StreamEnded struct{}

// TransportError signals that reading the transport failed.
type TransportError struct {
	Err error
}

func (Line) isSessionMsg()            {}
func (RoomAssigned) isSessionMsg()    {}
func (LoginAccepted) isSessionMsg()   {}
func (LoginRejected) isSessionMsg()   {}
func (AccountCreated) isSessionMsg()  {}
func (AccountRejected) isSessionMsg() {}
func (Broadcast) isSessionMsg()       {}
func (StreamEnded) isSessionMsg()     {}
func (TransportError) isSessionMsg()  {}

// stopMsg asks a room, the registry or the account store to stop.
type stopMsg struct{}

func (stopMsg) isRoomMsg()     {}
func (stopMsg) isRegistryMsg() {}
func (stopMsg) isAccountsMsg() {}
