// Package compiler provides the shell compiler for RBGN scripts.
// This file defines the CompileError type for structured error reporting.
package compiler

import (
	"fmt"
	"strings"
)

// Compile error phases.
const (
	// PhaseCompiler marks a genuine script error: the command is unknown.
	PhaseCompiler = "compiler"
	// PhaseUnimplemented marks a declared command that has no shell translation yet.
	PhaseUnimplemented = "unimplemented"
)

// CompileError represents a structured compilation error with location information.
type CompileError struct {
	// Phase is PhaseCompiler or PhaseUnimplemented.
	Phase string

	// Command is the offending command name.
	Command string

	// Message is the human-readable error description.
	Message string

	// Line is the 1-indexed line number where the error occurred, 0 if unknown.
	Line int
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s error at line %d: %s", e.Phase, e.Line, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Phase, e.Message)
}

// SourceLine returns the script line the error refers to.
func (e *CompileError) SourceLine() int {
	return e.Line
}

// IsUnimplemented reports whether the command exists but cannot be compiled yet.
func (e *CompileError) IsUnimplemented() bool {
	return e.Phase == PhaseUnimplemented
}

// NewCompilerError creates a CompileError for an unknown command.
func NewCompilerError(name string, line int) *CompileError {
	return &CompileError{
		Phase:   PhaseCompiler,
		Command: name,
		Message: fmt.Sprintf("unknown command '%s' (maybe you want to interpret with -i)", name),
		Line:    line,
	}
}

// NewUnimplementedError creates a CompileError for a command that is declared
// but has no shell translation.
func NewUnimplementedError(name string, line int) *CompileError {
	return &CompileError{
		Phase:   PhaseUnimplemented,
		Command: name,
		Message: fmt.Sprintf("command '%s' cannot be compiled to shell yet; run it with -i", name),
		Line:    line,
	}
}

// NewInvalidNameError is returned when a variable name cannot be used as a shell identifier.
func NewInvalidNameError(name, variable string, line int) *CompileError {
	return &CompileError{
		Phase:   PhaseCompiler,
		Command: name,
		Message: fmt.Sprintf("variable name '%s' is not a valid shell identifier", variable),
		Line:    line,
	}
}

// GenerateErrorContext generates source code context around an error location.
// It includes 2 lines before and 2 lines after the error line, with line numbers
// and a pointer (^) indicating the error column.
//
// Example output:
//
//	  2 | STATIC_STR_VAR x ab
//	  3 | READ y
//	> 4 | FIRST x
//	    | ^
//	  5 | ECHO y
func GenerateErrorContext(source string, line, column int) string {
	if source == "" || line <= 0 {
		return ""
	}

	// 末尾の改行で空の行を作らない
	lines := strings.Split(strings.TrimSuffix(source, "\n"), "\n")
	if line > len(lines) {
		return ""
	}

	start := line - 3
	if start < 0 {
		start = 0
	}
	end := line + 2
	if end > len(lines) {
		end = len(lines)
	}

	var buf strings.Builder

	lineNumWidth := len(fmt.Sprintf("%d", end))

	for i := start; i < end; i++ {
		lineNum := i + 1
		lineContent := strings.TrimSuffix(lines[i], "\r")

		if lineNum == line {
			buf.WriteString(fmt.Sprintf("> %*d | %s\n", lineNumWidth, lineNum, lineContent))
			// "> " + 行番号 + " | " の幅だけずらす
			pointerIndent := 2 + lineNumWidth + 3
			if column > 0 {
				buf.WriteString(fmt.Sprintf("%s%s^\n", strings.Repeat(" ", pointerIndent), strings.Repeat(" ", column-1)))
			} else {
				buf.WriteString(fmt.Sprintf("%s^\n", strings.Repeat(" ", pointerIndent)))
			}
		} else {
			buf.WriteString(fmt.Sprintf("  %*d | %s\n", lineNumWidth, lineNum, lineContent))
		}
	}

	return buf.String()
}
