package vm

import (
	"context"
	"errors"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zurustar/rbgn/pkg/command"
	"github.com/zurustar/rbgn/pkg/opcode"
	"github.com/zurustar/rbgn/pkg/script"
)

var errInvalidInput = errors.New("input is not valid UTF-8")

// registerIOCommands registers commands that touch standard input or output.
func (vm *VM) registerIOCommands() {
	// READ var: 標準入力から1行読み込み、末尾の空白を除いて変数に格納
	vm.RegisterCommand(opcode.Read, func(ctx context.Context, v *VM, cmd command.Command, _ script.Source) error {
		// プロンプトを先に表示する
		if err := v.Flush(); err != nil {
			return err
		}

		line, err := v.readLine(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return NewInterruptedError(err)
			}
			if err != io.EOF {
				return NewInputError(cmd, err)
			}
			if line == "" {
				return NewInputError(cmd, io.ErrUnexpectedEOF)
			}
		}
		if !utf8.ValidString(line) {
			return NewInputError(cmd, errInvalidInput)
		}

		v.store.Set(cmd.Arg1, strings.TrimRightFunc(line, unicode.IsSpace))
		return nil
	})

	vm.RegisterCommand(opcode.Echo, func(_ context.Context, v *VM, cmd command.Command, _ script.Source) error {
		return v.write(v.store.Get(cmd.Arg1) + "\n")
	})

	vm.RegisterCommand(opcode.NoNewline, func(_ context.Context, v *VM, cmd command.Command, _ script.Source) error {
		if err := v.write(v.store.Get(cmd.Arg1)); err != nil {
			return err
		}
		return v.Flush()
	})

	vm.RegisterCommand(opcode.RawNoNewline, func(_ context.Context, v *VM, cmd command.Command, _ script.Source) error {
		return v.write(v.store.Get(cmd.Arg1))
	})

	vm.RegisterCommand(opcode.Flush, func(_ context.Context, v *VM, _ command.Command, _ script.Source) error {
		return v.Flush()
	})
}
