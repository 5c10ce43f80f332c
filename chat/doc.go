/*
Package chat is the server-agnostic core of roomchat: sessions, rooms, the
room registry and the account store.

Every one of those is an actor. It owns its state, runs in its own goroutine
and is only reached through its handle, whose methods enqueue a message in
the actor's mailbox. Actors never read each other's fields and no locks are
used; a mailbox is served one message at a time, which is what serializes
room creation, account creation and room membership.

This package should not know anything about sockets. A Session writes to an
io.WriteCloser and is fed Line, StreamEnded and TransportError messages by
whatever reads the connection.
*/
package chat
