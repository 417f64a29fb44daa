// Package compiler provides the shell compiler for RBGN scripts.
// It translates a script, line by line, into an equivalent bash script.
//
// The compiler mirrors the interpreter in package vm: both bind handlers to the
// command names declared in package opcode. Only a subset of commands has a shell
// translation; commands declared as unbuilt for compile mode fail with a
// PhaseUnimplemented error, and anything else fails as an unknown command.
package compiler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	"github.com/zurustar/rbgn/pkg/command"
	"github.com/zurustar/rbgn/pkg/logger"
	"github.com/zurustar/rbgn/pkg/opcode"
	"github.com/zurustar/rbgn/pkg/script"
)

// ConsoleTag prefixes every compiled line echoed to the console.
const ConsoleTag = "HRO | "

var tagColor = color.New(color.FgCyan)

// EmitFunc translates one command into zero or more lines of shell source.
type EmitFunc func(c *Compiler, cmd command.Command) ([]string, error)

// Compiler collects the shell translation of a script.
type Compiler struct {
	emitters map[opcode.Cmd]EmitFunc
	lines    []string
	echo     io.Writer
	log      *slog.Logger
}

// Option is a functional option for configuring the Compiler.
type Option func(*Compiler)

// WithEcho prints every emitted line to w, prefixed with ConsoleTag, as soon as
// it is produced.
func WithEcho(w io.Writer) Option {
	return func(c *Compiler) {
		c.echo = w
	}
}

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Compiler) {
		c.log = log
	}
}

// New creates a Compiler with the default shell translations registered.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		emitters: make(map[opcode.Cmd]EmitFunc),
		log:      logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.registerShellEmitters()

	return c
}

// RegisterEmitter binds a translation to a command name, replacing any existing one.
func (c *Compiler) RegisterEmitter(name opcode.Cmd, fn EmitFunc) {
	c.emitters[name] = fn
}

// HasEmitter reports whether a translation is registered for name.
func (c *Compiler) HasEmitter(name opcode.Cmd) bool {
	_, ok := c.emitters[name]
	return ok
}

// Compile translates a single command and appends the result.
func (c *Compiler) Compile(cmd command.Command) error {
	c.log.Debug("Compiling command", "cmd", cmd.Name, "arg1", cmd.Arg1, "arg2", cmd.Arg2, "line", cmd.Line)

	emit, ok := c.emitters[cmd.Cmd()]
	if !ok {
		if opcode.CompileSupport(cmd.Cmd()) == opcode.Unbuilt {
			return NewUnimplementedError(cmd.Name, cmd.Line)
		}
		return NewCompilerError(cmd.Name, cmd.Line)
	}

	lines, err := emit(c, cmd)
	if err != nil {
		return err
	}

	for _, line := range lines {
		c.lines = append(c.lines, line)
		if c.echo != nil {
			if _, err := fmt.Fprintf(c.echo, "%s%s\n", tagColor.Sprint(ConsoleTag), line); err != nil {
				return fmt.Errorf("failed to write compiled line: %w", err)
			}
		}
	}
	return nil
}

// CompileSource translates every line of src, stopping at the first error.
func (c *Compiler) CompileSource(src script.Source) error {
	for {
		line, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := c.Compile(command.ParseLine(line.Text, line.Number)); err != nil {
			return err
		}
	}
}

// Lines returns the shell lines emitted so far.
func (c *Compiler) Lines() []string {
	return c.lines
}

// Document renders a complete shell script: header followed by the emitted lines.
func (c *Compiler) Document(h Header) []byte {
	var buf strings.Builder
	for _, line := range h.Lines() {
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	for _, line := range c.lines {
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	return []byte(buf.String())
}
