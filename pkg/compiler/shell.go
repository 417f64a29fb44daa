package compiler

import (
	"fmt"
	"regexp"

	"github.com/zurustar/rbgn/pkg/command"
	"github.com/zurustar/rbgn/pkg/opcode"
)

// shellVarPrefix namespaces script variables in the generated shell.
const shellVarPrefix = "RUNTIME_"

var shellIdentifier = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// Header describes the comment block at the top of a compiled script.
type Header struct {
	Source string // script path
	Digest string // BLAKE3 digest of the script bytes
}

// Lines returns the header lines, starting with the shebang.
func (h Header) Lines() []string {
	lines := []string{"#!/bin/bash"}
	if h.Source != "" {
		lines = append(lines, fmt.Sprintf("# Generated by rbgn from %s. Do not edit.", h.Source))
	}
	if h.Digest != "" {
		lines = append(lines, "# source blake3: "+h.Digest)
	}
	return lines
}

// registerShellEmitters registers the commands that have a bash translation.
func (c *Compiler) registerShellEmitters() {
	c.RegisterEmitter(opcode.Read, func(_ *Compiler, cmd command.Command) ([]string, error) {
		v, err := shellVar(cmd, cmd.Arg1)
		if err != nil {
			return nil, err
		}
		return []string{"read -r " + v}, nil
	})

	c.RegisterEmitter(opcode.Echo, func(_ *Compiler, cmd command.Command) ([]string, error) {
		v, err := shellVar(cmd, cmd.Arg1)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf(`echo "$%s"`, v)}, nil
	})

	// COPY dst src
	c.RegisterEmitter(opcode.Copy, func(_ *Compiler, cmd command.Command) ([]string, error) {
		dst, err := shellVar(cmd, cmd.Arg1)
		if err != nil {
			return nil, err
		}
		src, err := shellVar(cmd, cmd.Arg2)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf(`%s="$%s"`, dst, src)}, nil
	})

	c.RegisterEmitter(opcode.Nop, func(*Compiler, command.Command) ([]string, error) {
		return nil, nil
	})
}

func shellVar(cmd command.Command, name string) (string, error) {
	if !shellIdentifier.MatchString(name) {
		return "", NewInvalidNameError(cmd.Name, name, cmd.Line)
	}
	return shellVarPrefix + name, nil
}
