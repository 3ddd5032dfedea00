// Package command defines the Command value and the parser turning external
// text lines into commands.
package command

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Command is a single parsed instruction. The run loop treats it as opaque
// and hands it to the command manager.
type Command struct {
	Name string
	Args []string
}

// Quit returns the command that terminates the application.
func Quit() Command {
	return Command{Name: "quit"}
}

// String returns the command in its textual form.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// known is the set of command verbs this core understands. Keybinding
// tables of the embedding frontend map onto the same verbs.
var known = map[string]struct{}{
	"play":      {},
	"pause":     {},
	"playpause": {},
	"stop":      {},
	"next":      {},
	"previous":  {},
	"seek":      {},
	"quit":      {},
}

// Parse parses an externally received text line into zero or more commands.
// Commands are separated by ';'. An empty or whitespace-only line yields no
// commands and no error. An unknown verb fails the whole line.
func Parse(input string) ([]Command, error) {
	var cmds []Command
	for _, chunk := range strings.Split(input, ";") {
		fields := strings.Fields(chunk)
		if len(fields) == 0 {
			continue
		}

		name := strings.ToLower(fields[0])
		if _, ok := known[name]; !ok {
			return nil, errors.Newf("unknown command %q", fields[0])
		}

		cmds = append(cmds, Command{Name: name, Args: fields[1:]})
	}
	return cmds, nil
}
