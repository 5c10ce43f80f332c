package transport

import (
	"errors"
	"fmt"
	"net"

	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

// SSHListener is a listener socket that upgrades every connection to SSH
// and serves frames read from the client's shell session.
type SSHListener struct {
	net.Listener
	config *ssh.ServerConfig
}

// ListenSSH makes an SSH listener socket.
func ListenSSH(laddr string, config *ssh.ServerConfig) (*SSHListener, error) {
	socket, err := net.Listen("tcp", laddr)
	if err != nil {
		return nil, err
	}
	l := SSHListener{Listener: socket, config: config}
	return &l, nil
}

// Serve accepts connections until the listener is closed. Handshakes run in
// their own goroutine so a slow client does not hold up accepting.
func (l *SSHListener) Serve(handler func(Conn)) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			logger.Printf("Failed to accept connection: %v", err)
			return err
		}

		go func() {
			c, err := l.handleConn(conn)
			if err != nil {
				logger.Printf("[%s] Failed to handshake: %v", conn.RemoteAddr(), err)
				conn.Close()
				return
			}
			handler(c)
		}()
	}
}

func (l *SSHListener) handleConn(conn net.Conn) (*sshConn, error) {
	// Upgrade TCP connection to SSH connection
	sshConn, channels, requests, err := ssh.NewServerConn(conn, l.config)
	if err != nil {
		return nil, err
	}

	go ssh.DiscardRequests(requests)
	c, err := newSession(sshConn, channels)
	if err != nil {
		sshConn.Close()
		return nil, err
	}
	return c, nil
}

// sshConn reads lines through a terminal, which takes care of echo and line
// editing for interactive clients.
type sshConn struct {
	terminal *term.Terminal
	conn     *ssh.ServerConn
	channel  ssh.Channel
	pending  [][]byte
}

// newSession accepts the first session channel of conn and rejects the
// rest.
func newSession(conn *ssh.ServerConn, channels <-chan ssh.NewChannel) (*sshConn, error) {
	for ch := range channels {
		if t := ch.ChannelType(); t != "session" {
			ch.Reject(ssh.UnknownChannelType, fmt.Sprintf("unknown channel type: %s", t))
			continue
		}

		channel, requests, err := ch.Accept()
		if err != nil {
			return nil, err
		}
		c := &sshConn{
			terminal: term.NewTerminal(channel, ""),
			conn:     conn,
			channel:  channel,
		}
		go c.listen(requests)
		go func() {
			for ch := range channels {
				ch.Reject(ssh.Prohibited, "only one session allowed")
			}
		}()
		go func() {
			conn.Wait()
			channel.Close()
		}()
		return c, nil
	}
	return nil, errors.New("connection closed before opening a session")
}

func (c *sshConn) ReadLine() ([]byte, error) {
	if len(c.pending) == 0 {
		line, err := c.terminal.ReadLine()
		if err != nil {
			return nil, err
		}
		c.pending = fragment([]byte(line), MaxFrameSize)
	}

	frame := c.pending[0]
	c.pending = c.pending[1:]
	return frame, nil
}

// Write translates "\n" into "\r\n" for the client's terminal.
func (c *sshConn) Write(p []byte) (int, error) {
	return c.terminal.Write(p)
}

// Close the ssh connection.
func (c *sshConn) Close() error {
	return c.conn.Close()
}

func (c *sshConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *sshConn) Name() string {
	name := fmt.Sprintf("%s@%s", c.conn.User(), c.conn.RemoteAddr())
	if c.conn.Permissions != nil {
		if fingerprint := c.conn.Permissions.Extensions["fingerprint"]; fingerprint != "" {
			name += " (" + fingerprint + ")"
		}
	}
	return name
}

type ptyRequest struct {
	Term    string
	Columns uint32
	Rows    uint32
	Width   uint32
	Height  uint32
	Modes   string
}

type windowChange struct {
	Columns uint32
	Rows    uint32
	Width   uint32
	Height  uint32
}

// listen negotiates terminal type and settings.
func (c *sshConn) listen(requests <-chan *ssh.Request) {
	hasShell := false

	for req := range requests {
		var ok bool

		switch req.Type {
		case "shell":
			if !hasShell {
				ok = true
				hasShell = true
			}
		case "pty-req":
			var pty ptyRequest
			if ssh.Unmarshal(req.Payload, &pty) == nil {
				ok = c.terminal.SetSize(int(pty.Columns), int(pty.Rows)) == nil
			}
		case "window-change":
			var win windowChange
			if ssh.Unmarshal(req.Payload, &win) == nil {
				ok = c.terminal.SetSize(int(win.Columns), int(win.Rows)) == nil
			}
		}

		if req.WantReply {
			req.Reply(ok, nil)
		}
	}
}
