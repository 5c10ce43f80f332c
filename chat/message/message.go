// Package message is the wire protocol spoken over a connection: parsing of
// input frames into commands, and the notices written back to clients.
package message

import "fmt"

// Newline terminates every frame written to a client.
const Newline = "\n"

// SystemMsg is a notice sent from the server directly to one client, not
// shown to anyone else. Usually in response to a command.
type SystemMsg struct {
	body string
}

func NewSystemMsg(body string) *SystemMsg {
	return &SystemMsg{body: body}
}

// NewSystemMsgf formats a SystemMsg.
func NewSystemMsgf(format string, args ...interface{}) *SystemMsg {
	return NewSystemMsg(fmt.Sprintf(format, args...))
}

func (m *SystemMsg) String() string {
	return fmt.Sprintf("-> %s", m.body)
}

// Bytes renders the notice as one outgoing frame, terminator included.
func (m *SystemMsg) Bytes() []byte {
	return []byte(m.String() + Newline)
}
