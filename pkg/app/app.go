package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/text/encoding"

	"github.com/zurustar/rbgn/pkg/cli"
	"github.com/zurustar/rbgn/pkg/compiler"
	"github.com/zurustar/rbgn/pkg/fileutil"
	"github.com/zurustar/rbgn/pkg/logger"
	"github.com/zurustar/rbgn/pkg/script"
	"github.com/zurustar/rbgn/pkg/vm"
)

// OutputPerm is the mode of a compiled shell script.
const OutputPerm = 0755

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	config *cli.Config
	log    *slog.Logger
	enc    encoding.Encoding
}

// New Applicationを作成
func New(stdin io.Reader, stdout, stderr io.Writer) *Application {
	return &Application{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
}

// Run アプリケーションを実行
// SIGINT/SIGTERM を受けると実行中のスクリプトを中断する
// 2回目のシグナルは既定の動作に戻してプロセスを終了させる
func (app *Application) Run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	context.AfterFunc(ctx, stop)
	return app.RunContext(ctx, args)
}

// RunContext runs the application under ctx.
func (app *Application) RunContext(ctx context.Context, args []string) error {
	// 1. コマンドライン引数の解析
	config, err := cli.ParseArgs(args)
	if err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}
	app.config = config

	if config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}
	if config.ShowVersion {
		fmt.Fprintln(app.stdout, cli.Banner())
		return nil
	}

	// 2. ロガーの初期化
	if err := logger.InitLoggerWithWriter(config.LogLevel, app.stderr); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.log = logger.GetLogger()

	if !config.Quiet {
		fmt.Fprintln(app.stderr, cli.Banner())
	}

	// 3. スクリプトを開く
	path, err := fileutil.ResolveScript(config.ScriptPath)
	if err != nil {
		return err
	}
	app.enc, err = script.LookupEncoding(config.Encoding)
	if err != nil {
		return err
	}
	reader, err := script.Open(path, app.enc)
	if err != nil {
		return err
	}
	defer reader.Close()

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	mode := "compile"
	if config.Interpret {
		mode = "interpret"
	}
	app.log.Info("Session started", "script", path, "mode", mode, "encoding", config.Encoding)

	// 4. 実行またはコンパイル
	if config.Interpret {
		err = app.interpret(ctx, reader)
	} else {
		err = app.compile(path, reader)
	}
	if err != nil {
		return app.withSourceContext(path, err)
	}

	app.log.Info("Session finished", "script", path, "lines", reader.LineNumber())
	return nil
}

func (app *Application) interpret(ctx context.Context, src script.Source) error {
	machine := vm.New(
		vm.WithStdin(app.stdin),
		vm.WithStdout(app.stdout),
		vm.WithLogger(app.log),
	)
	return machine.Run(ctx, src)
}

func (app *Application) compile(path string, src script.Source) error {
	out := app.config.OutputPath

	if out == "" {
		c := compiler.New(compiler.WithEcho(app.stdout), compiler.WithLogger(app.log))
		return c.CompileSource(src)
	}

	c := compiler.New(compiler.WithLogger(app.log))
	if err := c.CompileSource(src); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	doc := c.Document(compiler.Header{
		Source: filepath.Base(path),
		Digest: fileutil.Digest(data),
	})

	changed, err := fileutil.WriteFileAtomic(out, doc, OutputPerm)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if changed {
		app.log.Info("Shell script written", "output", out, "lines", len(c.Lines()))
	} else {
		app.log.Info("Shell script unchanged", "output", out)
	}
	return nil
}

// sourceLiner is implemented by errors that point at a script line.
type sourceLiner interface {
	SourceLine() int
}

// withSourceContext appends the lines around the failing line to err.
func (app *Application) withSourceContext(path string, err error) error {
	var lined sourceLiner
	if !errors.As(err, &lined) || lined.SourceLine() <= 0 {
		return err
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return err
	}
	if app.enc != nil {
		decoded, decErr := app.enc.NewDecoder().Bytes(data)
		if decErr != nil {
			return err
		}
		data = decoded
	}

	excerpt := compiler.GenerateErrorContext(string(data), lined.SourceLine(), 1)
	if excerpt == "" {
		return err
	}
	return fmt.Errorf("%w\n%s", err, excerpt)
}
