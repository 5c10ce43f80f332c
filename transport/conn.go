// Package transport accepts client connections over plain TCP or SSH and
// splits their input into frames. It knows nothing about chat.
package transport

import (
	"bufio"
	"io"
	"net"
)

// MaxFrameSize is the largest frame ReadLine returns. Longer lines are split
// into consecutive frames of at most MaxFrameSize bytes.
const MaxFrameSize = 1024

// Conn is one client connection.
type Conn interface {
	io.WriteCloser

	// ReadLine returns the next frame with its line terminator stripped. It
	// returns io.EOF at end of stream.
	ReadLine() ([]byte, error)
	RemoteAddr() net.Addr
	// Name describes the connection in logs.
	Name() string
}

// FrameReader splits a byte stream into newline-delimited frames of at most
// MaxFrameSize bytes.
type FrameReader struct {
	reader    *bufio.Reader
	continued bool
}

// NewFrameReader returns a FrameReader reading from r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{
		reader: bufio.NewReaderSize(r, MaxFrameSize),
	}
}

// ReadLine returns the next frame. "\n" and "\r\n" terminators are stripped
// and an unterminated last line is returned before io.EOF.
func (r *FrameReader) ReadLine() ([]byte, error) {
	for {
		line, isPrefix, err := r.reader.ReadLine()
		if err != nil {
			return nil, err
		}

		continued := r.continued
		r.continued = isPrefix
		if continued && !isPrefix && len(line) == 0 {
			// Terminator of a line that exactly filled the previous frame.
			continue
		}

		// line is only valid until the next read.
		frame := make([]byte, len(line))
		copy(frame, line)
		return frame, nil
	}
}

// fragment splits line into frames of at most size bytes. An empty line is
// one empty frame.
func fragment(line []byte, size int) [][]byte {
	if len(line) <= size {
		return [][]byte{line}
	}
	frames := make([][]byte, 0, len(line)/size+1)
	for len(line) > size {
		frames = append(frames, line[:size])
		line = line[size:]
	}
	if len(line) > 0 {
		frames = append(frames, line)
	}
	return frames
}

type tcpConn struct {
	net.Conn
	*FrameReader
}

func newTCPConn(conn net.Conn) *tcpConn {
	return &tcpConn{
		Conn:        conn,
		FrameReader: NewFrameReader(conn),
	}
}

func (c *tcpConn) Name() string {
	return c.RemoteAddr().String()
}
