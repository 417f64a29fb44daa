// Package opcode defines the command set for RBGN scripts.
// This package is the foundation that both the shell compiler and the VM depend on.
// A command is declared exactly once here, together with how each backend supports it;
// the vm and compiler packages bind their handlers to these names.
package opcode

import "sort"

// Cmd represents a command name as written in the first field of a script line.
type Cmd string

// Commands understood by at least one backend.
const (
	// Nop is produced by blank lines and comment lines (leading '-').
	Nop Cmd = ""

	// Read reads one line of standard input into a variable.
	// Args: [variable]
	Read Cmd = "READ"

	// Echo writes a variable followed by a newline.
	// Args: [variable]
	Echo Cmd = "ECHO"

	// NoNewline writes a variable without a newline and flushes output.
	// Args: [variable]
	NoNewline Cmd = "NONL"

	// RawNoNewline writes a variable without a newline and without flushing.
	// Args: [variable]
	RawNoNewline Cmd = "__RBGN_NONL"

	// Flush flushes standard output.
	Flush Cmd = "__RBGN_FLUSH"

	// Wait, Sleep and SleepSecs suspend execution for a number of seconds.
	// Args: [seconds]
	Wait      Cmd = "WAIT"
	Sleep     Cmd = "SLEEP"
	SleepSecs Cmd = "SLEEP_SECS"

	// First prints the first character of a variable and removes it.
	// Args: [variable]
	First Cmd = "FIRST"

	// StoreFirst moves the first character of a variable into another variable.
	// Args: [source, destination]
	StoreFirst Cmd = "STOREFIRST"

	// Last prints the last character of a variable and removes it.
	// Args: [variable]
	Last Cmd = "LAST"

	// StoreLast moves the last character of a variable into another variable.
	// Args: [source, destination]
	StoreLast Cmd = "STORELAST"

	// Forever replays the following block until the process is stopped.
	Forever Cmd = "FOREVER"

	// StrGet replays the following block while a variable is non-empty.
	// Args: [variable]
	StrGet Cmd = "STRGET"

	// Done terminates a loop block.
	Done Cmd = "DONE"

	// StaticStrVar assigns a literal string.
	// Args: [variable, literal]
	StaticStrVar Cmd = "STATIC_STR_VAR"

	// StaticStrSpace assigns a single space.
	// Args: [variable]
	StaticStrSpace Cmd = "STATIC_STR_SPACE"

	// ConstSet assigns a literal to a named constant.
	// Args: [constant, literal]
	ConstSet Cmd = "CONST_SET"

	// ConstWrite copies a named constant into a variable.
	// Args: [constant, variable]
	ConstWrite Cmd = "CONST_WRITE"

	// Option is reserved for option directives and does nothing.
	Option Cmd = "_OPT"

	// Copy assigns one variable from another. Only the shell compiler supports it.
	// Args: [destination, source]
	Copy Cmd = "COPY"
)

// Commands that are declared but not built yet.
const (
	Stdin        Cmd = "STDIN"
	Stop         Cmd = "STOP"
	Kill         Cmd = "KILL"
	Repeat       Cmd = "REPEAT"
	ChInc        Cmd = "CHINC"
	ChDec        Cmd = "CHDEC"
	StoreChInc   Cmd = "STORECHINC"
	StoreChDec   Cmd = "STORECHDEC"
	StrRange     Cmd = "STRRANGE"
	StrRangeLess Cmd = "STRRANGELESS"
	StrCat       Cmd = "STRCAT"
)

// Support describes how a backend handles a command.
type Support int

const (
	// Unsupported means the backend does not know the command at all.
	Unsupported Support = iota
	// Supported means the backend implements the command.
	Supported
	// Unbuilt means the command is declared for the backend but not implemented yet.
	Unbuilt
)

// String returns a readable name for the support level.
func (s Support) String() string {
	switch s {
	case Supported:
		return "supported"
	case Unbuilt:
		return "unbuilt"
	default:
		return "unsupported"
	}
}

// Def is the declaration of a single command.
type Def struct {
	Interpret Support // support in interpret mode
	Compile   Support // support in compile mode
	Loop      bool    // the command opens a block terminated by DONE
}

var (
	interpretOnly = Def{Interpret: Supported}
	bothModes     = Def{Interpret: Supported, Compile: Supported}
	notPortable   = Def{Interpret: Supported, Compile: Unbuilt}
	notBuilt      = Def{Compile: Unbuilt}
)

var table = map[Cmd]Def{
	Nop:  bothModes,
	Read: bothModes,
	Echo: bothModes,
	Copy: {Compile: Supported},

	NoNewline:    notPortable,
	RawNoNewline: interpretOnly,
	Flush:        interpretOnly,

	Wait:      interpretOnly,
	Sleep:     interpretOnly,
	SleepSecs: interpretOnly,

	First:      notPortable,
	StoreFirst: notPortable,
	Last:       notPortable,
	StoreLast:  notPortable,

	Forever: {Interpret: Supported, Loop: true},
	StrGet:  {Interpret: Supported, Compile: Unbuilt, Loop: true},
	Done:    notBuilt,

	StaticStrVar:   interpretOnly,
	StaticStrSpace: interpretOnly,
	ConstSet:       interpretOnly,
	ConstWrite:     interpretOnly,
	Option:         interpretOnly,

	Stdin:        notBuilt,
	Stop:         notBuilt,
	Kill:         notBuilt,
	Repeat:       notBuilt,
	ChInc:        notBuilt,
	ChDec:        notBuilt,
	StoreChInc:   notBuilt,
	StoreChDec:   notBuilt,
	StrRange:     notBuilt,
	StrRangeLess: notBuilt,
	StrCat:       notBuilt,
}

// Lookup returns the declaration of a command.
func Lookup(c Cmd) (Def, bool) {
	d, ok := table[c]
	return d, ok
}

// InterpretSupport returns how interpret mode handles c.
func InterpretSupport(c Cmd) Support {
	return table[c].Interpret
}

// CompileSupport returns how compile mode handles c.
func CompileSupport(c Cmd) Support {
	return table[c].Compile
}

// IsLoop reports whether c opens a DONE-terminated block.
func IsLoop(c Cmd) bool {
	return table[c].Loop
}

// Commands returns every declared command in name order.
func Commands() []Cmd {
	cmds := make([]Cmd, 0, len(table))
	for c := range table {
		cmds = append(cmds, c)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i] < cmds[j] })
	return cmds
}
