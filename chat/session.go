package chat

import (
	"errors"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/shazow/roomchat/chat/message"
)

// The error a session terminates with when it receives a message it does not
// expect in its current state.
var ErrUnexpectedMessage = errors.New("unexpected message")

// State of a Session. Sessions only move forward through the states.
type State int

const (
	// Unauthenticated sessions may only log in or create an account.
	Unauthenticated State = iota
	// Authenticated sessions are logged in but not in a room yet.
	Authenticated
	// InRoom sessions are logged in and have a current room.
	InRoom
	// Closed sessions have terminated.
	Closed
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case InRoom:
		return "in room"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Status is a snapshot of a session's state, as seen by its own goroutine.
type Status struct {
	State State
	User  string
	Room  string
}

type statusQuery struct {
	reply chan<- Status
}

func (statusQuery) isSessionMsg() {}

// Session is the state machine of one connected client. It consumes frames
// from its transport, talks to the account store and the registry, relays
// chat lines to its room and writes everything it is sent back to its
// transport.
type Session struct {
	id      string
	name    string
	created time.Time
	inbox   *mailbox[SessionMsg]

	// Owned by the serving goroutine.
	conn     io.WriteCloser
	accounts *Accounts
	rooms    *Registry
	room     *Room
	state    State
	user     string
	linesIn  int
	bytesOut uint64
}

// NewSession binds a session to conn and starts serving it. name describes
// the transport in logs, such as the remote address.
func NewSession(conn io.WriteCloser, name string, accounts *Accounts, rooms *Registry) *Session {
	s := &Session{
		id:       uuid.NewString(),
		name:     name,
		created:  time.Now(),
		inbox:    newMailbox[SessionMsg](),
		conn:     conn,
		accounts: accounts,
		rooms:    rooms,
		state:    Unauthenticated,
	}
	go s.serve()
	return s
}

// ID returns the session's unique id.
func (s *Session) ID() string {
	return s.id
}

// Send enqueues m, returning false once the session has terminated.
func (s *Session) Send(m SessionMsg) bool {
	return s.inbox.send(m)
}

// Done is closed once the session has terminated.
func (s *Session) Done() <-chan struct{} {
	return s.inbox.done
}

// Status asks the session for its current state.
func (s *Session) Status() Status {
	status, ok := ask(s.inbox, func(reply chan<- Status) SessionMsg {
		return statusQuery{reply}
	})
	if !ok {
		return Status{State: Closed}
	}
	return status
}

// State is a shortcut for Status().State.
func (s *Session) State() State {
	return s.Status().State
}

func (s *Session) serve() {
	defer s.inbox.close()
	logger.Printf("[%s] Connected: %s", s.id, s.name)
	for s.state != Closed {
		s.handle(s.inbox.receive())
	}
}

func (s *Session) handle(msg SessionMsg) {
	switch msg := msg.(type) {
	case Line:
		s.linesIn++
		s.handleLine(msg.Data)
	case RoomAssigned:
		if s.state == Unauthenticated || msg.Room == nil {
			s.fail(msg)
			return
		}
		// Two :Room lines can both be answered before either is seen here.
		if s.room != nil && s.room != msg.Room {
			s.room.Leave(s)
		}
		s.room = msg.Room
		s.state = InRoom
		s.room.Enter(s)
		s.notice(message.NewSystemMsgf("Joined room %s.", s.room.Name()))
	case LoginAccepted:
		logger.Printf("[%s] Login with success: %s", s.id, msg.User)
		s.user = msg.User
		if s.state == Unauthenticated {
			s.state = Authenticated
		}
		s.notice(message.NewSystemMsgf("Logged in as %s.", msg.User))
	case LoginRejected:
		logger.Printf("[%s] Login error: %s", s.id, msg.User)
		s.notice(message.NewSystemMsgf("Login failed for %s.", msg.User))
	case AccountCreated:
		logger.Printf("[%s] Account created with success: %s", s.id, msg.User)
		s.notice(message.NewSystemMsgf("Account created: %s.", msg.User))
	case AccountRejected:
		logger.Printf("[%s] User name already exists: %s", s.id, msg.User)
		s.notice(message.NewSystemMsgf("Account already exists: %s.", msg.User))
	case Broadcast:
		if s.state != InRoom {
			s.fail(msg)
			return
		}
		frame := make([]byte, 0, len(msg.Data)+len(message.Newline))
		frame = append(frame, msg.Data...)
		frame = append(frame, message.Newline...)
		s.write(frame)
	case StreamEnded:
		s.terminate(nil)
	case TransportError:
		s.terminate(msg.Err)
	case statusQuery:
		status := Status{State: s.state, User: s.user}
		if s.room != nil {
			status.Room = s.room.Name()
		}
		msg.reply <- status
	default:
		s.fail(msg)
	}
}

func (s *Session) handleLine(line []byte) {
	switch cmd := message.ParseInput(line).(type) {
	case message.Login:
		s.accounts.Login(cmd.User, cmd.Pass, s)
	case message.Create:
		s.accounts.Create(cmd.User, cmd.Pass, s)
	case message.Join:
		switch s.state {
		case Authenticated:
			s.rooms.Join(cmd.Name, s)
		case InRoom:
			s.rooms.Change(cmd.Name, s, s.room)
		default:
			s.notice(message.NewSystemMsg("You need to log in or create an account first."))
		}
	case message.Malformed:
		s.notice(message.NewSystemMsg(cmd.Usage))
	case message.Chat:
		switch s.state {
		case InRoom:
			s.room.Broadcast(cmd.Body)
		case Authenticated:
			s.notice(message.NewSystemMsg("Join a room first: " + message.PrefixRoom + " <name>"))
		default:
			s.notice(message.NewSystemMsg(message.DefaultCommands.Help()))
		}
	}
}

func (s *Session) notice(m *message.SystemMsg) {
	s.write(m.Bytes())
}

func (s *Session) write(p []byte) {
	if s.state == Closed {
		return
	}
	n, err := s.conn.Write(p)
	s.bytesOut += uint64(n)
	if err != nil {
		s.terminate(err)
	}
}

// fail terminates the session on a message it can not handle in its current
// state.
func (s *Session) fail(msg SessionMsg) {
	logger.Printf("[%s] %s in state %s: %T", s.id, ErrUnexpectedMessage, s.state, msg)
	s.terminate(ErrUnexpectedMessage)
}

// terminate leaves the current room, closes the transport and stops the
// session.
func (s *Session) terminate(err error) {
	if s.state == Closed {
		return
	}
	if s.room != nil {
		s.room.Leave(s)
	}
	s.state = Closed
	if closeErr := s.conn.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		logger.Printf("[%s] Closed with error: %s", s.id, err)
	}
	logger.Printf("[%s] Disconnected %s, connected %s: %d lines in, %s out",
		s.id, s.name, humanize.Time(s.created), s.linesIn, humanize.Bytes(s.bytesOut))
}
