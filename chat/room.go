package chat

import (
	"github.com/shazow/roomchat/set"
)

type roomMsg interface {
	isRoomMsg()
}

type enterMsg struct {
	member Member
}

type leaveMsg struct {
	member Member
}

type broadcastMsg struct {
	data []byte
}

type rosterMsg struct {
	reply chan<- []string
}

func (enterMsg) isRoomMsg()     {}
func (leaveMsg) isRoomMsg()     {}
func (broadcastMsg) isRoomMsg() {}
func (rosterMsg) isRoomMsg()    {}

// Room is a handle to a named broadcast group. Rooms are created by the
// Registry and live until the registry is closed, even when empty.
type Room struct {
	name  string
	inbox *mailbox[roomMsg]

	// Owned by the serving goroutine.
	members *set.Set
}

// NewRoom creates a room and starts serving it.
func NewRoom(name string) *Room {
	r := &Room{
		name:    name,
		inbox:   newMailbox[roomMsg](),
		members: set.New(),
	}
	go r.serve()
	return r
}

// Name of the room.
func (r *Room) Name() string {
	return r.name
}

// Enter adds m to the room.
func (r *Room) Enter(m Member) bool {
	return r.inbox.send(enterMsg{m})
}

// Leave removes m from the room. Leaving a room one is not in is a no-op.
func (r *Room) Leave(m Member) bool {
	return r.inbox.send(leaveMsg{m})
}

// Broadcast delivers data to every member, the sender included. data must
// not be modified afterwards.
func (r *Room) Broadcast(data []byte) bool {
	return r.inbox.send(broadcastMsg{data})
}

// Members returns the sorted IDs of the current members.
func (r *Room) Members() []string {
	ids, _ := ask(r.inbox, func(reply chan<- []string) roomMsg {
		return rosterMsg{reply}
	})
	return ids
}

// Close stops the room.
func (r *Room) Close() {
	r.inbox.send(stopMsg{})
}

// Done is closed once the room has stopped.
func (r *Room) Done() <-chan struct{} {
	return r.inbox.done
}

func (r *Room) serve() {
	defer r.inbox.close()
	for r.handle(r.inbox.receive()) {
	}
	logger.Printf("[%s] Room stopped with %d members", r.name, r.members.Len())
}

// handle reacts to one message and reports whether to keep serving.
func (r *Room) handle(msg roomMsg) bool {
	switch msg := msg.(type) {
	case enterMsg:
		r.members.Add(set.Itemize(msg.member.ID(), msg.member))
		logger.Printf("[%s] Entered: %s (members: %d)", r.name, msg.member.ID(), r.members.Len())
	case leaveMsg:
		if err := r.members.Remove(msg.member.ID()); err == nil {
			logger.Printf("[%s] Left: %s (members: %d)", r.name, msg.member.ID(), r.members.Len())
		}
	case broadcastMsg:
		r.members.Each(func(_ string, item set.Item) error {
			item.Value().(Member).Send(Broadcast{Data: msg.data})
			return nil
		})
	case rosterMsg:
		msg.reply <- r.members.Keys()
	case stopMsg:
		return false
	default:
		logger.Printf("[%s] %s: %T", r.name, ErrUnexpectedMessage, msg)
		return false
	}
	return true
}
