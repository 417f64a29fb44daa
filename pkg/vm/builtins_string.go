package vm

import (
	"context"
	"unicode/utf8"

	"github.com/zurustar/rbgn/pkg/command"
	"github.com/zurustar/rbgn/pkg/opcode"
	"github.com/zurustar/rbgn/pkg/script"
)

// registerStringCommands registers variable assignment and character-slicing commands.
// Characters are Unicode code points, not bytes.
func (vm *VM) registerStringCommands() {
	// FIRST var: 先頭の1文字を出力し、変数から取り除く
	vm.RegisterCommand(opcode.First, func(_ context.Context, v *VM, cmd command.Command, _ script.Source) error {
		ch, err := v.takeFirst(cmd, cmd.Arg1)
		if err != nil {
			return err
		}
		return v.write(ch + "\n")
	})

	// STOREFIRST src dst: 先頭の1文字を dst に移す
	vm.RegisterCommand(opcode.StoreFirst, func(_ context.Context, v *VM, cmd command.Command, _ script.Source) error {
		ch, err := v.takeFirst(cmd, cmd.Arg1)
		if err != nil {
			return err
		}
		v.store.Set(cmd.Arg2, ch)
		return nil
	})

	// LAST var: 末尾の1文字を出力し、変数から取り除く
	vm.RegisterCommand(opcode.Last, func(_ context.Context, v *VM, cmd command.Command, _ script.Source) error {
		ch, err := v.takeLast(cmd, cmd.Arg1)
		if err != nil {
			return err
		}
		return v.write(ch + "\n")
	})

	// STORELAST src dst: 末尾の1文字を dst に移す
	vm.RegisterCommand(opcode.StoreLast, func(_ context.Context, v *VM, cmd command.Command, _ script.Source) error {
		ch, err := v.takeLast(cmd, cmd.Arg1)
		if err != nil {
			return err
		}
		v.store.Set(cmd.Arg2, ch)
		return nil
	})

	vm.RegisterCommand(opcode.StaticStrVar, func(_ context.Context, v *VM, cmd command.Command, _ script.Source) error {
		v.store.Set(cmd.Arg1, cmd.Arg2)
		return nil
	})

	vm.RegisterCommand(opcode.StaticStrSpace, func(_ context.Context, v *VM, cmd command.Command, _ script.Source) error {
		v.store.Set(cmd.Arg1, " ")
		return nil
	})

	vm.RegisterCommand(opcode.ConstSet, func(_ context.Context, v *VM, cmd command.Command, _ script.Source) error {
		v.store.SetConst(cmd.Arg1, cmd.Arg2)
		return nil
	})

	vm.RegisterCommand(opcode.ConstWrite, func(_ context.Context, v *VM, cmd command.Command, _ script.Source) error {
		v.store.Set(cmd.Arg2, v.store.Const(cmd.Arg1))
		return nil
	})
}

// takeFirst removes the first character of a variable and returns it.
func (vm *VM) takeFirst(cmd command.Command, name string) (string, error) {
	s := vm.store.Get(name)
	if s == "" {
		return "", NewEmptyStringError(cmd, name)
	}
	_, size := utf8.DecodeRuneInString(s)
	vm.store.Set(name, s[size:])
	return s[:size], nil
}

// takeLast removes the last character of a variable and returns it.
func (vm *VM) takeLast(cmd command.Command, name string) (string, error) {
	s := vm.store.Get(name)
	if s == "" {
		return "", NewEmptyStringError(cmd, name)
	}
	_, size := utf8.DecodeLastRuneInString(s)
	cut := len(s) - size
	vm.store.Set(name, s[:cut])
	return s[cut:], nil
}
