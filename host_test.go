package roomchat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/shazow/roomchat/chat"
	"github.com/shazow/roomchat/transport"
)

const testTimeout = 5 * time.Second

type testClient struct {
	net.Conn
	r *bufio.Reader
}

func dial(t *testing.T, addr string) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	conn.SetDeadline(time.Now().Add(testTimeout))
	t.Cleanup(func() { conn.Close() })
	return &testClient{Conn: conn, r: bufio.NewReader(conn)}
}

func (c *testClient) send(t *testing.T, line string) {
	t.Helper()
	if _, err := io.WriteString(c, line+"\n"); err != nil {
		t.Fatal(err)
	}
}

func (c *testClient) expect(t *testing.T, expected string) {
	t.Helper()
	actual, err := c.r.ReadString('\n')
	if err != nil {
		t.Fatalf("waiting for %q: %s", expected, err)
	}
	if actual != expected+"\n" {
		t.Errorf("Got: %q; Expected: %q", actual, expected+"\n")
	}
}

func (c *testClient) expectEOF(t *testing.T) {
	t.Helper()
	rest, err := io.ReadAll(c.r)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Errorf("unexpected output before EOF: %q", rest)
	}
}

// login creates an account for user and joins room.
func (c *testClient) login(t *testing.T, user, room string) {
	t.Helper()
	c.send(t, ":Create "+user+" secret")
	c.expect(t, "-> Account created: "+user+".")
	c.send(t, ":Login "+user+" secret")
	c.expect(t, "-> Logged in as "+user+".")
	c.send(t, ":Room "+room)
	c.expect(t, "-> Joined room "+room+".")
}

func serveTCP(t *testing.T, host *Host) string {
	t.Helper()
	l, err := transport.Listen("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		served <- host.Serve(ctx, l)
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-served; err != nil {
			t.Errorf("Serve: %s", err)
		}
		host.Close()
	})
	return l.Addr().String()
}

func TestHostScenario(t *testing.T) {
	addr := serveTCP(t, NewHost())

	bob := dial(t, addr)
	bob.login(t, "bob", "lobby")

	alice := dial(t, addr)
	alice.login(t, "alice", "lobby")
	alice.send(t, "hello")

	bob.expect(t, "hello")
	alice.expect(t, "hello")
}

func TestHostLoginRejected(t *testing.T) {
	host := NewHost()
	addr := serveTCP(t, host)

	bob := dial(t, addr)
	bob.login(t, "bob", "lobby")

	mallory := dial(t, addr)
	mallory.send(t, ":Login bob wrongpass")
	mallory.expect(t, "-> Login failed for bob.")
	mallory.send(t, ":Room lobby")
	mallory.expect(t, "-> You need to log in or create an account first.")

	// Nothing mallory sends reaches the room.
	mallory.send(t, "hello")
	mallory.expect(t, "-> Available commands:")
	bob.send(t, "ping")
	bob.expect(t, "ping")
}

func TestHostMotd(t *testing.T) {
	host := NewHost()
	host.SetMotd("Welcome!\n")
	addr := serveTCP(t, host)

	c := dial(t, addr)
	c.expect(t, "-> Welcome!")
	c.send(t, ":Login nobody nothing")
	c.expect(t, "-> Login failed for nobody.")
}

func TestHostDisconnectLeavesRoom(t *testing.T) {
	host := NewHost()
	addr := serveTCP(t, host)

	bob := dial(t, addr)
	bob.login(t, "bob", "lobby")

	alice := dial(t, addr)
	alice.login(t, "alice", "lobby")
	alice.Close()

	// alice's session leaves the room once it sees the end of its stream.
	deadline := time.Now().Add(testTimeout)
	for {
		n := lobbySize(t, host)
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Got: %d members; Expected: 1", n)
		}
		time.Sleep(10 * time.Millisecond)
	}

	bob.send(t, "still here")
	bob.expect(t, "still here")
}

func TestHostServerClosesOnStreamEnd(t *testing.T) {
	addr := serveTCP(t, NewHost())

	c := dial(t, addr)
	c.login(t, "carol", "lobby")
	if err := c.Conn.(*net.TCPConn).CloseWrite(); err != nil {
		t.Fatal(err)
	}
	c.expectEOF(t)
}

func TestHostFragmentsLongLines(t *testing.T) {
	addr := serveTCP(t, NewHost())

	c := dial(t, addr)
	c.login(t, "dave", "lobby")

	long := strings.Repeat("z", transport.MaxFrameSize+100)
	c.send(t, long)
	c.expect(t, long[:transport.MaxFrameSize])
	c.expect(t, long[transport.MaxFrameSize:])
}

func TestHostServeWithoutListeners(t *testing.T) {
	host := NewHost()
	defer host.Close()

	err := host.Serve(context.Background())
	if !errors.Is(err, ErrNoListeners) {
		t.Errorf("Got: %v; Expected: %v", err, ErrNoListeners)
	}
}

func TestHostServeStopsOnListenerClose(t *testing.T) {
	host := NewHost()
	defer host.Close()

	tcp, err := transport.Listen("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	other, err := transport.Listen("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	served := make(chan error, 1)
	go func() {
		served <- host.Serve(context.Background(), tcp, other)
	}()

	// Serve may not have started accepting yet; closing still stops it.
	tcp.Close()
	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Got: %v; Expected: nil", err)
		}
	case <-time.After(testTimeout):
		t.Fatal("Serve did not return after a listener was closed")
	}
}

// lobbySize counts the members of lobby through the registry.
func lobbySize(t *testing.T, host *Host) int {
	t.Helper()
	m := &probe{replies: make(chan chat.SessionMsg, 1)}
	host.Rooms().Join("lobby", m)
	select {
	case msg := <-m.replies:
		assigned, ok := msg.(chat.RoomAssigned)
		if !ok {
			t.Fatalf("Got: %T; Expected: RoomAssigned", msg)
		}
		return len(assigned.Room.Members())
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for the registry")
	}
	return 0
}

type probe struct {
	replies chan chat.SessionMsg
}

func (p *probe) ID() string {
	return "probe"
}

func (p *probe) Send(m chat.SessionMsg) bool {
	p.replies <- m
	return true
}

// waitFor reads lines until one contains expected.
func waitFor(r *bufio.Reader, expected string) error {
	for {
		line, err := r.ReadString('\n')
		if strings.Contains(line, expected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("waiting for %q: %w", expected, err)
		}
	}
}

func TestHostSSH(t *testing.T) {
	signer, err := transport.NewRandomKey()
	if err != nil {
		t.Fatal(err)
	}
	config := transport.MakeNoAuth()
	config.AddHostKey(signer)

	s, err := transport.ListenSSH("127.0.0.1:0", config)
	if err != nil {
		t.Fatal(err)
	}
	host := NewHost()
	host.SetMotd("Welcome!")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go host.Serve(ctx, s)
	defer host.Close()

	err = transport.ConnectShell(s.Addr().String(), "erin", func(r io.Reader, w io.WriteCloser) error {
		br := bufio.NewReader(r)
		steps := []struct {
			input    string
			expected string
		}{
			{"", "-> Welcome!\r"},
			{":Create erin secret\r", "-> Account created: erin."},
			{":Login erin secret\r", "-> Logged in as erin."},
			{":Room lobby\r", "-> Joined room lobby."},
			// Once for the echo, once for the broadcast.
			{"over ssh\r", "over ssh\r\n"},
			{"", "over ssh\r\n"},
		}
		for _, step := range steps {
			if step.input != "" {
				if _, err := io.WriteString(w, step.input); err != nil {
					return err
				}
			}
			if err := waitFor(br, step.expected); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
