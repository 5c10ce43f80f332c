package transport

import (
	"net"
)

// Listener yields client connections to a handler.
type Listener interface {
	// Serve calls handler in a new goroutine for every accepted connection.
	// It returns when accepting fails, for example because the listener was
	// closed.
	Serve(handler func(Conn)) error
	Addr() net.Addr
	Close() error
}

// TCPListener serves frames straight off TCP sockets.
type TCPListener struct {
	net.Listener
}

// Listen makes a plain TCP listener socket.
func Listen(laddr string) (*TCPListener, error) {
	socket, err := net.Listen("tcp", laddr)
	if err != nil {
		return nil, err
	}
	return &TCPListener{Listener: socket}, nil
}

// Serve accepts connections until the listener is closed.
func (l *TCPListener) Serve(handler func(Conn)) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			logger.Printf("Failed to accept connection: %v", err)
			return err
		}

		go handler(newTCPConn(conn))
	}
}
