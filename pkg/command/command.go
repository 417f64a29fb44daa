// Package command parses RBGN script lines into commands.
//
// A line holds at most three fields: a command name and two arguments. Fields are
// separated by runs of ASCII spaces; everything after the second separator is the
// second argument verbatim. There is no quoting or escaping, so a space inside an
// intended argument can only survive in the last field.
package command

import (
	"fmt"
	"strings"

	"github.com/zurustar/rbgn/pkg/opcode"
)

// Command is one parsed script line.
type Command struct {
	Name string // command name (e.g. ECHO)
	Arg1 string // first argument
	Arg2 string // second argument, absorbs the rest of the line
	Line int    // 1-indexed script line, 0 if unknown
}

// Parse parses a single line without line information.
func Parse(line string) Command {
	return ParseLine(line, 0)
}

// ParseLine parses a single line and records its line number.
// Lines starting with '-' are comments and parse to the empty command.
func ParseLine(line string, lineNo int) Command {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "-") {
		return Command{Line: lineNo}
	}

	name, rest, _ := strings.Cut(trimmed, " ")
	arg1, rest, _ := strings.Cut(strings.TrimLeft(rest, " "), " ")
	arg2 := strings.TrimLeft(rest, " ")

	return Command{Name: name, Arg1: arg1, Arg2: arg2, Line: lineNo}
}

// Cmd returns the command name as an opcode.
func (c Command) Cmd() opcode.Cmd {
	return opcode.Cmd(c.Name)
}

// IsNop reports whether the command is the empty command.
func (c Command) IsNop() bool {
	return c.Name == ""
}

func (c Command) String() string {
	switch {
	case c.Arg2 != "":
		return fmt.Sprintf("%s %s %s", c.Name, c.Arg1, c.Arg2)
	case c.Arg1 != "":
		return fmt.Sprintf("%s %s", c.Name, c.Arg1)
	default:
		return c.Name
	}
}
