package vm

import (
	"context"
	"strconv"
	"time"

	"github.com/zurustar/rbgn/pkg/command"
	"github.com/zurustar/rbgn/pkg/opcode"
	"github.com/zurustar/rbgn/pkg/script"
)

// registerSystemCommands registers timing and no-op commands.
func (vm *VM) registerSystemCommands() {
	wait := func(ctx context.Context, v *VM, cmd command.Command, _ script.Source) error {
		secs, err := strconv.ParseUint(cmd.Arg1, 10, 32)
		if err != nil {
			return NewInvalidArgumentError(cmd, cmd.Arg1, err)
		}

		// 待機中に出力が溜まったままにならないようにする
		if err := v.Flush(); err != nil {
			return err
		}

		d := time.Duration(secs) * time.Second
		v.log.Debug("Sleeping", "duration", d, "line", cmd.Line)
		if err := v.sleep(ctx, d); err != nil {
			return NewInterruptedError(err)
		}
		return nil
	}
	vm.RegisterCommand(opcode.Wait, wait)
	vm.RegisterCommand(opcode.Sleep, wait)
	vm.RegisterCommand(opcode.SleepSecs, wait)

	nop := func(context.Context, *VM, command.Command, script.Source) error {
		return nil
	}
	vm.RegisterCommand(opcode.Option, nop)
	vm.RegisterCommand(opcode.Nop, nop)
}
