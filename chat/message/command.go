package message

import (
	"errors"
	"fmt"
	"strings"
)

// Command prefixes understood by the server.
const (
	PrefixLogin  = ":Login"
	PrefixCreate = ":Create"
	PrefixRoom   = ":Room"
)

// The error returned when a command is given the wrong number of arguments.
var ErrMissingArg = errors.New("missing argument")

// The error returned when a command is added without a prefix.
var ErrMissingPrefix = errors.New("command missing prefix")

// Command is one parsed input frame. It is one of Login, Create, Join, Chat
// or Malformed.
type Command interface {
	isCommand()
}

// Login asks to authenticate as User.
type Login struct {
	User string
	Pass string
}

// Create asks to register a new account.
type Create struct {
	User string
	Pass string
}

// Join asks to enter (or switch to) the room Name.
type Join struct {
	Name string
}

// Chat is any line that is not a command. Body is the frame verbatim.
type Chat struct {
	Body []byte
}

// Malformed is a known command prefix with the wrong arguments.
type Malformed struct {
	Prefix string
	Usage  string
	Err    error
}

func (Login) isCommand()     {}
func (Create) isCommand()    {}
func (Join) isCommand()      {}
func (Chat) isCommand()      {}
func (Malformed) isCommand() {}

// Definition describes how a command prefix is parsed.
type Definition struct {
	// The command's key, such as :Login
	Prefix string
	// Argument placeholders, such as <user> <pass>
	PrefixHelp string
	Help       string
	// Number of arguments after the prefix. Extra fields are ignored.
	Args  int
	Parse func(args []string) Command
}

// Usage renders the one-line usage of the command.
func (d Definition) Usage() string {
	if d.PrefixHelp == "" {
		return d.Prefix
	}
	return d.Prefix + " " + d.PrefixHelp
}

// Commands is a registry of the available command prefixes.
type Commands map[string]*Definition

// Add will register a command definition.
func (c Commands) Add(def Definition) error {
	if def.Prefix == "" {
		return ErrMissingPrefix
	}

	c[def.Prefix] = &def
	return nil
}

// Parse turns a frame into a Command. Fields are split on whitespace; only
// the first field selects a command, anything else is Chat.
func (c Commands) Parse(line []byte) Command {
	fields := strings.Fields(string(line))
	if len(fields) > 0 {
		if def, ok := c[fields[0]]; ok {
			args := fields[1:]
			if len(args) < def.Args {
				return Malformed{
					Prefix: def.Prefix,
					Usage:  "usage: " + def.Usage(),
					Err:    fmt.Errorf("%s: %w", def.Prefix, ErrMissingArg),
				}
			}
			return def.Parse(args[:def.Args])
		}
	}

	body := make([]byte, len(line))
	copy(body, line)
	return Chat{Body: body}
}

// Help will return collated help text as one string.
func (c Commands) Help() string {
	return "Available commands:" + Newline + NewCommandsHelp(c).String()
}

// DefaultCommands holds the protocol's commands.
var DefaultCommands Commands

// ParseInput parses a frame using DefaultCommands.
func ParseInput(line []byte) Command {
	return DefaultCommands.Parse(line)
}

func init() {
	c := Commands{}

	c.Add(Definition{
		Prefix:     PrefixLogin,
		PrefixHelp: "<user> <pass>",
		Help:       "Log in to an existing account.",
		Args:       2,
		Parse: func(args []string) Command {
			return Login{User: args[0], Pass: args[1]}
		},
	})

	c.Add(Definition{
		Prefix:     PrefixCreate,
		PrefixHelp: "<user> <pass>",
		Help:       "Create a new account.",
		Args:       2,
		Parse: func(args []string) Command {
			return Create{User: args[0], Pass: args[1]}
		},
	})

	c.Add(Definition{
		Prefix:     PrefixRoom,
		PrefixHelp: "<name>",
		Help:       "Join a room, creating it if needed.",
		Args:       1,
		Parse: func(args []string) Command {
			return Join{Name: args[0]}
		},
	})

	DefaultCommands = c
}
