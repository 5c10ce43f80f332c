package roomchat

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/shazow/roomchat/chat"
	"github.com/shazow/roomchat/chat/message"
	"github.com/shazow/roomchat/transport"
)

// ErrNoListeners is returned by Serve when there is nothing to serve.
var ErrNoListeners = errors.New("no listeners to serve")

// Host is the bridge between transport and chat modules. It owns the account
// store and the room registry and starts one session per connection.
type Host struct {
	accounts *chat.Accounts
	rooms    *chat.Registry

	mu    sync.Mutex
	motd  string
	count int
}

// NewHost starts the account store and the room registry.
func NewHost() *Host {
	return &Host{
		accounts: chat.NewAccounts(),
		rooms:    chat.NewRegistry(),
	}
}

// SetMotd sets the host's message of the day.
func (h *Host) SetMotd(motd string) {
	h.mu.Lock()
	h.motd = motd
	h.mu.Unlock()
}

// Accounts returns the host's account store.
func (h *Host) Accounts() *chat.Accounts {
	return h.accounts
}

// Rooms returns the host's room registry.
func (h *Host) Rooms() *chat.Registry {
	return h.rooms
}

// Connect runs a session for conn. It feeds every frame read from conn to the
// session and returns once the session has terminated.
func (h *Host) Connect(conn transport.Conn) {
	h.mu.Lock()
	motd := h.motd
	h.count++
	count := h.count
	h.mu.Unlock()

	// Send MOTD
	if motd != "" {
		m := message.NewSystemMsg(strings.TrimRight(motd, "\r\n"))
		if _, err := conn.Write(m.Bytes()); err != nil {
			logger.Errorf("[%s] Failed to write motd: %s", conn.Name(), err)
			conn.Close()
			return
		}
	}

	session := chat.NewSession(conn, conn.Name(), h.accounts, h.rooms)
	logger.Debugf("[%s] Connected as session %s (%d so far)", conn.Name(), session.ID(), count)

	for {
		line, err := conn.ReadLine()
		var msg chat.SessionMsg
		switch {
		case err == io.EOF:
			msg = chat.StreamEnded{}
		case err != nil:
			msg = chat.TransportError{Err: err}
		default:
			msg = chat.Line{Data: line}
		}

		if !session.Send(msg) || err != nil {
			break
		}
	}

	<-session.Done()
	logger.Debugf("[%s] Disconnected", conn.Name())
}

// Serve runs every listener until ctx is done or any of them stops. Closing
// the listeners is not an error.
func (h *Host) Serve(ctx context.Context, listeners ...transport.Listener) error {
	if len(listeners) == 0 {
		return ErrNoListeners
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	closers := transport.MultiCloser{}
	for _, l := range listeners {
		closers = append(closers, l)
	}
	g.Go(func() error {
		<-ctx.Done()
		if err := closers.Close(); err != nil {
			logger.Debugf("Closing listeners: %s", err)
		}
		return nil
	})

	for _, l := range listeners {
		l := l
		g.Go(func() error {
			// One listener going down takes the others with it.
			defer cancel()
			logger.Infof("Listening on %s", l.Addr())
			err := l.Serve(h.Connect)
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}

// Close stops the account store and the room registry, which in turn stops
// every room. Sessions still running terminate on their next request.
func (h *Host) Close() {
	h.accounts.Close()
	h.rooms.Close()
}
