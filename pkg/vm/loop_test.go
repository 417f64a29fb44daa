package vm

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/zurustar/rbgn/pkg/script"
)

func TestStrGet_ConsumesVariable(t *testing.T) {
	v, out := newTestVM("")

	err := runLines(v,
		"STATIC_STR_VAR x ab",
		"STRGET x",
		"FIRST x",
		"DONE",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "a\nb\n" {
		t.Errorf("expected %q, got %q", "a\nb\n", out.String())
	}
	if got := v.Store().Get("x"); got != "" {
		t.Errorf("expected x to be empty, got %q", got)
	}
}

func TestStrGet_ReplaysWholeBlockInOrder(t *testing.T) {
	v, out := newTestVM("")

	err := runLines(v,
		"STATIC_STR_VAR x xyz",
		"STATIC_STR_VAR sep -",
		"STRGET x",
		"STORELAST x ch",
		"- 末尾から1文字ずつ",
		"NONL ch",
		"NONL sep",
		"DONE",
		"STATIC_STR_VAR end !",
		"ECHO end",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "z-y-x-!\n" {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestStrGet_EmptyVariableSkipsBlock(t *testing.T) {
	v, out := newTestVM("")

	err := runLines(v,
		"STRGET x",
		"ECHO never",
		"BOGUS never dispatched",
		"DONE",
		"STATIC_STR_VAR after yes",
		"ECHO after",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// ブロックは消費されるが一度も実行されない
	if out.String() != "yes\n" {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestStrGet_DoneIsTrimmed(t *testing.T) {
	v, out := newTestVM("")

	err := runLines(v,
		"STATIC_STR_VAR x a",
		"STRGET x",
		"  FIRST x",
		"  DONE  ",
		"STATIC_STR_VAR y b",
		"ECHO y",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "a\nb\n" {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestStrGet_UnterminatedBlock(t *testing.T) {
	v, out := newTestVM("")

	err := runLines(v,
		"STATIC_STR_VAR x hi",
		"STRGET x",
		"FIRST x",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "h\ni\n" {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestStrGet_ErrorInsideBlockKeepsLine(t *testing.T) {
	v, _ := newTestVM("")

	err := runLines(v,
		"STATIC_STR_VAR x abc",
		"STRGET x",
		"FIRST x",
		"FIRST x",
		"DONE",
	)
	// 2周目の2つ目のFIRSTで空になる
	rtErr := requireRuntimeError(t, err, ErrorEmptyString)
	if rtErr.Line != 4 {
		t.Errorf("expected line 4, got %d", rtErr.Line)
	}
}

func TestLoop_NestedLoopIsRejected(t *testing.T) {
	v, _ := newTestVM("")

	err := runLines(v,
		"STATIC_STR_VAR x ab",
		"FOREVER",
		"STRGET x",
		"FIRST x",
		"DONE",
		"DONE",
	)
	rtErr := requireRuntimeError(t, err, ErrorNestedLoop)
	if rtErr.Command != "STRGET" || rtErr.Line != 3 {
		t.Errorf("unexpected error location: %v", rtErr)
	}
}

func TestLoop_InnerLoopWarnsWhileBuffering(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	v, out := newTestVM("", WithLogger(log))

	// 外側のブロックは最初の DONE で閉じる
	err := runLines(v,
		"STATIC_STR_VAR x ab",
		"STRGET x",
		"STRGET y",
		"DONE",
		"STATIC_STR_VAR z ok",
		"ECHO z",
	)
	requireRuntimeError(t, err, ErrorNestedLoop)
	if out.Len() != 0 {
		t.Errorf("unexpected output: %q", out.String())
	}
	if !strings.Contains(logs.String(), "inner=STRGET") || !strings.Contains(logs.String(), "line=3") {
		t.Errorf("expected a warning about the inner loop, got:\n%s", logs.String())
	}
}

func TestForever_StopsWhenInterrupted(t *testing.T) {
	passes := 0
	var v *VM
	sleeper := func(context.Context, time.Duration) error {
		passes++
		if passes == 3 {
			v.Stop()
		}
		return nil
	}

	v, out := newTestVM("", WithSleeper(sleeper))
	err := runLines(v,
		"STATIC_STR_VAR tick .",
		"FOREVER",
		"NONL tick",
		"WAIT 1",
		"DONE",
		"ECHO unreachable",
	)
	requireRuntimeError(t, err, ErrorInterrupted)

	if passes != 3 {
		t.Errorf("expected 3 passes, got %d", passes)
	}
	if out.String() != "..." {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestForever_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	v, _ := newTestVM("")
	err := v.Run(ctx, script.NewQueueFromStrings("FOREVER", "STATIC_STR_VAR x busy", "DONE"))
	requireRuntimeError(t, err, ErrorInterrupted)
}

func TestProperty_StrGetFirstEchoesEveryCharacter(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("STRGET with FIRST prints the value one character per line", prop.ForAll(
		func(value string) bool {
			v, out := newTestVM("")
			err := runLines(v,
				"STATIC_STR_VAR x "+value,
				"STRGET x",
				"FIRST x",
				"DONE",
			)
			if err != nil {
				return false
			}

			var expected strings.Builder
			for _, r := range value {
				expected.WriteRune(r)
				expected.WriteString("\n")
			}
			return out.String() == expected.String() && v.Store().Get("x") == ""
		},
		gen.Identifier(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
