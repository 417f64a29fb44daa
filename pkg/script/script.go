// Package script provides line sources for RBGN scripts.
//
// A Source is a finite, forward-only sequence of lines. Reader reads lines from a
// byte stream (a script file or standard input), decoding it to UTF-8 first when an
// encoding is configured. Queue replays lines that were buffered in memory.
package script

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Line is one line of a script with its trailing newline removed.
type Line struct {
	Text   string // line content
	Number int    // 1-indexed line number in the originating stream
}

// Source produces script lines in order.
// Next returns io.EOF once the source is exhausted.
type Source interface {
	Next() (Line, error)
}

// DecodeError is returned when a line is not valid UTF-8 after decoding.
type DecodeError struct {
	Name string // stream name
	Line int    // 1-indexed line number
}

func (e *DecodeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("invalid UTF-8 at %s:%d", e.Name, e.Line)
	}
	return fmt.Sprintf("invalid UTF-8 at line %d", e.Line)
}

// SourceLine returns the line that failed to decode.
func (e *DecodeError) SourceLine() int {
	return e.Line
}

// Reader reads lines from a byte stream.
type Reader struct {
	name   string
	r      *bufio.Reader
	closer io.Closer
	line   int
}

// NewReader creates a Reader over r. When enc is nil the stream is read as UTF-8.
func NewReader(name string, r io.Reader, enc encoding.Encoding) *Reader {
	if enc != nil {
		r = transform.NewReader(r, enc.NewDecoder())
	}
	return &Reader{
		name: name,
		r:    bufio.NewReader(r),
	}
}

// Open opens a script file for reading.
func Open(path string, enc encoding.Encoding) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	reader := NewReader(path, f, enc)
	reader.closer = f
	return reader, nil
}

// Next returns the next line without its line terminator ("\n" or "\r\n").
func (r *Reader) Next() (Line, error) {
	text, err := r.r.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			return Line{}, fmt.Errorf("failed to read %s: %w", r.displayName(), err)
		}
		if text == "" {
			return Line{}, io.EOF
		}
	}

	r.line++
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")

	if !utf8.ValidString(text) {
		return Line{}, &DecodeError{Name: r.name, Line: r.line}
	}

	return Line{Text: text, Number: r.line}, nil
}

// LineNumber returns the number of the last line returned by Next.
func (r *Reader) LineNumber() int {
	return r.line
}

// Name returns the stream name given at construction.
func (r *Reader) Name() string {
	return r.name
}

// Close closes the underlying file if the Reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func (r *Reader) displayName() string {
	if r.name == "" {
		return "input"
	}
	return r.name
}
