package vm

import (
	"context"
	"io"
	"strings"

	"github.com/zurustar/rbgn/pkg/command"
	"github.com/zurustar/rbgn/pkg/opcode"
	"github.com/zurustar/rbgn/pkg/script"
)

// blockTerminator closes a loop block. It is consumed and never part of the block.
const blockTerminator = string(opcode.Done)

// registerLoopCommands registers FOREVER and STRGET.
// Both buffer the following lines up to DONE and differ only in the replay condition.
func (vm *VM) registerLoopCommands() {
	vm.RegisterCommand(opcode.Forever, func(ctx context.Context, v *VM, cmd command.Command, src script.Source) error {
		return v.executeLoop(ctx, cmd, src, func() bool { return true })
	})

	vm.RegisterCommand(opcode.StrGet, func(ctx context.Context, v *VM, cmd command.Command, src script.Source) error {
		name := cmd.Arg1
		return v.executeLoop(ctx, cmd, src, func() bool { return v.store.Get(name) != "" })
	})
}

// executeLoop buffers a block from src and replays it while cond holds.
// cond is evaluated before every pass.
func (vm *VM) executeLoop(ctx context.Context, cmd command.Command, src script.Source, cond func() bool) error {
	// 再生中のブロックは元のスクリプトから切り離されているため、ネストは扱えない
	if vm.replaying > 0 {
		return NewNestedLoopError(cmd)
	}

	block, err := vm.collectBlock(cmd, src)
	if err != nil {
		return err
	}

	vm.replaying++
	defer func() { vm.replaying-- }()

	for pass := 0; cond(); pass++ {
		if err := ctx.Err(); err != nil {
			return NewInterruptedError(err)
		}
		vm.log.Debug("Replaying block", "cmd", cmd.Name, "pass", pass, "lines", len(block))
		if err := vm.runSource(ctx, script.NewQueue(block...)); err != nil {
			return err
		}
	}
	return nil
}

// collectBlock reads lines from src up to the first DONE line.
// The end of src also closes the block.
func (vm *VM) collectBlock(cmd command.Command, src script.Source) ([]script.Line, error) {
	var block []script.Line
	for {
		line, err := src.Next()
		if err == io.EOF {
			vm.log.Warn("Loop block not terminated by DONE", "cmd", cmd.Name, "line", cmd.Line)
			break
		}
		if err != nil {
			return nil, err
		}

		if strings.TrimSpace(line.Text) == blockTerminator {
			break
		}
		// 内側のループの DONE が外側のブロックを閉じる
		if inner := command.ParseLine(line.Text, line.Number); opcode.IsLoop(inner.Cmd()) {
			vm.log.Warn("Loop command inside a loop block; the next DONE closes the outer block",
				"cmd", cmd.Name, "inner", inner.Name, "line", line.Number)
		}
		block = append(block, line)
	}

	vm.log.Debug("Loop block buffered", "cmd", cmd.Name, "lines", len(block))
	return block, nil
}
