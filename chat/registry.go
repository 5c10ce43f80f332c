package chat

import (
	"github.com/shazow/roomchat/set"
)

type registryMsg interface {
	isRegistryMsg()
}

type joinMsg struct {
	name   string
	member Member
}

type changeMsg struct {
	name   string
	member Member
	from   *Room
}

type namesMsg struct {
	reply chan<- []string
}

func (joinMsg) isRegistryMsg()  {}
func (changeMsg) isRegistryMsg() {}
func (namesMsg) isRegistryMsg()  {}

// Registry maps room names to rooms, creating rooms on first reference.
// Requests are served one at a time, so at most one Room ever exists per
// name.
type Registry struct {
	inbox *mailbox[registryMsg]

	// Owned by the serving goroutine.
	rooms *set.Set
}

// NewRegistry creates an empty registry and starts serving it.
func NewRegistry() *Registry {
	r := &Registry{
		inbox: newMailbox[registryMsg](),
		rooms: set.New(),
	}
	go r.serve()
	return r
}

// Join resolves the room called name and replies RoomAssigned to m.
func (r *Registry) Join(name string, m Member) bool {
	return r.inbox.send(joinMsg{name, m})
}

// Change resolves the room called name, removes m from the room it is
// leaving and replies RoomAssigned to m. The departure is queued on from
// before the reply is sent, so m's next Enter can not overtake it.
func (r *Registry) Change(name string, m Member, from *Room) bool {
	return r.inbox.send(changeMsg{name, m, from})
}

// Names returns the sorted names of every room created so far.
func (r *Registry) Names() []string {
	names, _ := ask(r.inbox, func(reply chan<- []string) registryMsg {
		return namesMsg{reply}
	})
	return names
}

// Len returns the number of rooms created so far.
func (r *Registry) Len() int {
	return len(r.Names())
}

// Close stops every room and then the registry.
func (r *Registry) Close() {
	r.inbox.send(stopMsg{})
}

// Done is closed once the registry has stopped.
func (r *Registry) Done() <-chan struct{} {
	return r.inbox.done
}

func (r *Registry) serve() {
	defer r.inbox.close()
	for r.handle(r.inbox.receive()) {
	}

	r.rooms.Each(func(_ string, item set.Item) error {
		item.Value().(*Room).Close()
		return nil
	})
	logger.Printf("Registry stopped with %d rooms", r.rooms.Len())
}

func (r *Registry) handle(msg registryMsg) bool {
	switch msg := msg.(type) {
	case joinMsg:
		msg.member.Send(RoomAssigned{Room: r.room(msg.name)})
	case changeMsg:
		room := r.room(msg.name)
		if msg.from != nil {
			msg.from.Leave(msg.member)
		}
		msg.member.Send(RoomAssigned{Room: room})
	case namesMsg:
		msg.reply <- r.rooms.Keys()
	case stopMsg:
		return false
	default:
		logger.Printf("Registry: %s: %T", ErrUnexpectedMessage, msg)
		return false
	}
	return true
}

// room returns the room called name, creating it if needed.
func (r *Registry) room(name string) *Room {
	if item, err := r.rooms.Get(name); err == nil {
		return item.Value().(*Room)
	}

	room := NewRoom(name)
	r.rooms.Add(set.Itemize(name, room))
	logger.Printf("Created room: %s", name)
	return room
}
