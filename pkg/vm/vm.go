// Package vm provides the interpreter for RBGN scripts.
// It implements:
// - Command dispatch through a handler table keyed by opcode
// - The variable store and its string primitives
// - FOREVER / STRGET loop blocks, buffered once and replayed
// - Context-aware sleeping and interruption
package vm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tevino/abool/v2"

	"github.com/zurustar/rbgn/pkg/command"
	"github.com/zurustar/rbgn/pkg/logger"
	"github.com/zurustar/rbgn/pkg/opcode"
	"github.com/zurustar/rbgn/pkg/script"
)

// VM executes script commands against a variable store and standard I/O.
type VM struct {
	store *Store

	stdin   *bufio.Reader
	pending chan readResult // 中断された READ の読み込み結果
	out     *bufio.Writer

	handlers map[opcode.Cmd]HandlerFunc
	sleep    Sleeper

	// replaying is non-zero while a loop block is being replayed.
	replaying int

	running *abool.AtomicBool
	mu      sync.Mutex
	cancel  context.CancelFunc

	log *slog.Logger
}

// HandlerFunc executes one command. src is the source the command was read
// from; loop commands pull their block from it.
type HandlerFunc func(ctx context.Context, vm *VM, cmd command.Command, src script.Source) error

// Sleeper suspends execution for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Option is a functional option for configuring the VM.
type Option func(*VM)

// WithStdin sets the interactive input read by READ.
func WithStdin(r io.Reader) Option {
	return func(vm *VM) {
		vm.stdin = bufio.NewReader(r)
	}
}

// WithStdout sets the destination of ECHO, NONL, FIRST and LAST.
func WithStdout(w io.Writer) Option {
	return func(vm *VM) {
		vm.out = bufio.NewWriter(w)
	}
}

// WithStore runs the VM against an existing store.
func WithStore(store *Store) Option {
	return func(vm *VM) {
		vm.store = store
	}
}

// WithSleeper replaces the sleep implementation used by WAIT.
func WithSleeper(s Sleeper) Option {
	return func(vm *VM) {
		vm.sleep = s
	}
}

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(vm *VM) {
		vm.log = log
	}
}

// New creates a new VM with the default command set registered.
func New(opts ...Option) *VM {
	vm := &VM{
		store:    NewStore(),
		stdin:    bufio.NewReader(os.Stdin),
		out:      bufio.NewWriter(os.Stdout),
		handlers: make(map[opcode.Cmd]HandlerFunc),
		sleep:    sleepContext,
		running:  abool.New(),
		log:      logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(vm)
	}

	vm.registerDefaultCommands()

	return vm
}

func (vm *VM) registerDefaultCommands() {
	vm.registerIOCommands()
	vm.registerStringCommands()
	vm.registerSystemCommands()
	vm.registerLoopCommands()
}

// RegisterCommand binds a handler to a command name, replacing any existing one.
func (vm *VM) RegisterCommand(name opcode.Cmd, fn HandlerFunc) {
	vm.handlers[name] = fn
}

// HasCommand reports whether a handler is registered for name.
func (vm *VM) HasCommand(name opcode.Cmd) bool {
	_, ok := vm.handlers[name]
	return ok
}

// Store returns the variable store.
func (vm *VM) Store() *Store {
	return vm.store
}

// Run executes every line of src in order. Output is flushed before Run returns,
// including when it returns an error.
func (vm *VM) Run(ctx context.Context, src script.Source) (err error) {
	if !vm.running.SetToIf(false, true) {
		return errors.New("vm is already running")
	}
	defer vm.running.UnSet()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	vm.mu.Lock()
	vm.cancel = cancel
	vm.mu.Unlock()

	defer func() {
		if flushErr := vm.Flush(); err == nil {
			err = flushErr
		}
	}()

	vm.log.Debug("VM started")
	if err := vm.runSource(ctx, src); err != nil {
		return err
	}
	vm.log.Debug("VM finished", "variables", vm.store.Len())
	return nil
}

// runSource executes lines from src until it is exhausted.
func (vm *VM) runSource(ctx context.Context, src script.Source) error {
	for {
		if err := ctx.Err(); err != nil {
			return NewInterruptedError(err)
		}

		line, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := vm.Execute(ctx, command.ParseLine(line.Text, line.Number), src); err != nil {
			return err
		}
	}
}

// Execute dispatches a single command.
func (vm *VM) Execute(ctx context.Context, cmd command.Command, src script.Source) error {
	if !cmd.IsNop() {
		vm.log.Debug("Executing command", "cmd", cmd.Name, "arg1", cmd.Arg1, "arg2", cmd.Arg2, "line", cmd.Line)
	}

	handler, ok := vm.handlers[cmd.Cmd()]
	if !ok {
		if def, declared := opcode.Lookup(cmd.Cmd()); declared && def.Compile == opcode.Supported {
			return NewCompileOnlyError(cmd)
		}
		return NewUnknownCommandError(cmd)
	}
	return handler(ctx, vm, cmd, src)
}

// Stop cancels a running VM. Run returns an INTERRUPTED error.
func (vm *VM) Stop() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.cancel != nil {
		vm.cancel()
	}
}

// IsRunning returns whether the VM is currently running.
func (vm *VM) IsRunning() bool {
	return vm.running.IsSet()
}

// Flush writes any buffered output.
func (vm *VM) Flush() error {
	if err := vm.out.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

func (vm *VM) write(s string) error {
	if _, err := vm.out.WriteString(s); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

type readResult struct {
	line string
	err  error
}

// readLine reads one line of stdin, giving up when ctx is done.
// A read abandoned by cancellation stays pending and its line goes to the next call.
func (vm *VM) readLine(ctx context.Context) (string, error) {
	if vm.pending == nil {
		ch := make(chan readResult, 1)
		go func(r *bufio.Reader) {
			line, err := r.ReadString('\n')
			ch <- readResult{line: line, err: err}
		}(vm.stdin)
		vm.pending = ch
	}

	select {
	case res := <-vm.pending:
		vm.pending = nil
		return res.line, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
