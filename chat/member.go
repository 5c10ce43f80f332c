package chat

// Member is a handle to anything that can be a member of a room or await a
// reply from the registry or the account store. Session is the only
// production implementation.
type Member interface {
	// ID is unique per member and stable for its lifetime.
	ID() string
	// Send enqueues m for the member, returning false if it has terminated.
	Send(m SessionMsg) bool
}
