package message

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		input    string
		expected Command
	}{
		{":Login alice secret", Login{User: "alice", Pass: "secret"}},
		{":Create bob hunter2", Create{User: "bob", Pass: "hunter2"}},
		{":Room lobby", Join{Name: "lobby"}},
		{"  :Room\tlobby  ", Join{Name: "lobby"}},
		{":Room my room", Join{Name: "my"}},
		{":Login alice secret extra", Login{User: "alice", Pass: "secret"}},
		{"hello", Chat{Body: []byte("hello")}},
		{"hello  world ", Chat{Body: []byte("hello  world ")}},
		{"", Chat{Body: []byte{}}},
		{":login alice secret", Chat{Body: []byte(":login alice secret")}},
		{"say :Room lobby", Chat{Body: []byte("say :Room lobby")}},
	}

	for _, test := range tests {
		actual := ParseInput([]byte(test.input))
		if !reflect.DeepEqual(actual, test.expected) {
			t.Errorf("%q: Got: %#v; Expected: %#v", test.input, actual, test.expected)
		}
	}
}

func TestParseInputMalformed(t *testing.T) {
	tests := []struct {
		input  string
		prefix string
		usage  string
	}{
		{":Login alice", PrefixLogin, "usage: :Login <user> <pass>"},
		{":Create", PrefixCreate, "usage: :Create <user> <pass>"},
		{":Room", PrefixRoom, "usage: :Room <name>"},
	}

	for _, test := range tests {
		cmd, ok := ParseInput([]byte(test.input)).(Malformed)
		if !ok {
			t.Errorf("%q: expected Malformed, got %T", test.input, cmd)
			continue
		}
		if cmd.Prefix != test.prefix {
			t.Errorf("Got: %q; Expected: %q", cmd.Prefix, test.prefix)
		}
		if cmd.Usage != test.usage {
			t.Errorf("Got: %q; Expected: %q", cmd.Usage, test.usage)
		}
		if !errors.Is(cmd.Err, ErrMissingArg) {
			t.Errorf("Got: %v; Expected: %v", cmd.Err, ErrMissingArg)
		}
	}
}

func TestParseInputCopiesBody(t *testing.T) {
	line := []byte("hello")
	cmd := ParseInput(line).(Chat)
	line[0] = 'j'
	if string(cmd.Body) != "hello" {
		t.Errorf("Got: %q; Expected: %q", cmd.Body, "hello")
	}
}

func TestCommandsAdd(t *testing.T) {
	c := Commands{}
	if err := c.Add(Definition{}); err != ErrMissingPrefix {
		t.Errorf("Got: %v; Expected: %v", err, ErrMissingPrefix)
	}
}

func TestHelp(t *testing.T) {
	help := DefaultCommands.Help()
	for _, prefix := range []string{PrefixLogin, PrefixCreate, PrefixRoom} {
		if !strings.Contains(help, prefix) {
			t.Errorf("help is missing %s: %q", prefix, help)
		}
	}
	if !strings.HasPrefix(help, "Available commands:"+Newline) {
		t.Errorf("unexpected help header: %q", help)
	}
}

func TestSystemMsg(t *testing.T) {
	m := NewSystemMsgf("Logged in as %s.", "alice")
	if actual, expected := m.String(), "-> Logged in as alice."; actual != expected {
		t.Errorf("Got: %q; Expected: %q", actual, expected)
	}
	if actual, expected := string(m.Bytes()), "-> Logged in as alice.\n"; actual != expected {
		t.Errorf("Got: %q; Expected: %q", actual, expected)
	}
}
