package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zurustar/rbgn/pkg/config"
)

// バージョン情報
const (
	Version = "0.1.0"
	Authors = "the rbgn contributors"
)

// 組み込みのデフォルト値
const (
	DefaultLogLevel = "info"
	DefaultEncoding = "utf-8"
)

// 環境変数名
const (
	EnvLogLevel = "RBGN_LOG_LEVEL"
	EnvEncoding = "RBGN_ENCODING"
	EnvTimeout  = "RBGN_TIMEOUT"
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	ScriptPath  string        // 実行またはコンパイルするスクリプト
	Interpret   bool          // true ならインタプリタ、false ならシェルへコンパイル
	OutputPath  string        // コンパイル結果の出力先（空ならコンソール）
	LogLevel    string        // ログレベル（debug, info, warn, error）
	Encoding    string        // スクリプトの文字コード
	Timeout     time.Duration // タイムアウト時間（0は無制限）
	ConfigPath  string        // 設定ファイル
	Quiet       bool          // バナーを表示しない
	ShowHelp    bool          // ヘルプ表示フラグ
	ShowVersion bool          // バージョン表示フラグ
}

// Banner returns the startup line.
func Banner() string {
	return fmt.Sprintf("RBGN v%s created by %s", Version, Authors)
}

// ParseArgs コマンドライン引数を解析してConfigを返す
// 優先順位: フラグ > 環境変数 > 設定ファイル > デフォルト
func ParseArgs(args []string) (*Config, error) {
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("rbgn", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}

	var timeoutSec int
	fs.BoolVar(&config.Interpret, "interpret", false, "インタプリタとして実行")
	fs.BoolVar(&config.Interpret, "i", false, "インタプリタとして実行（短縮形）")
	fs.StringVar(&config.OutputPath, "output", "", "コンパイル結果の出力先")
	fs.StringVar(&config.OutputPath, "o", "", "コンパイル結果の出力先（短縮形）")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", DefaultLogLevel, "ログレベル（短縮形）")
	fs.StringVar(&config.Encoding, "encoding", DefaultEncoding, "スクリプトの文字コード")
	fs.StringVar(&config.Encoding, "e", DefaultEncoding, "スクリプトの文字コード（短縮形）")
	fs.IntVar(&timeoutSec, "timeout", 0, "タイムアウト時間（秒）")
	fs.IntVar(&timeoutSec, "t", 0, "タイムアウト時間（秒）（短縮形）")
	fs.StringVar(&config.ConfigPath, "config", "", "設定ファイル")
	fs.StringVar(&config.ConfigPath, "c", "", "設定ファイル（短縮形）")
	fs.BoolVar(&config.Quiet, "quiet", false, "バナーを表示しない")
	fs.BoolVar(&config.Quiet, "q", false, "バナーを表示しない（短縮形）")
	fs.BoolVar(&config.ShowVersion, "version", false, "バージョンを表示")
	fs.BoolVar(&config.ShowVersion, "v", false, "バージョンを表示（短縮形）")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	if config.ShowHelp || config.ShowVersion {
		return config, nil
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	given := func(long, short string) bool {
		return set[long] || set[short]
	}

	// 設定ファイル
	file := &configFile{}
	if config.ConfigPath != "" {
		loaded, err := loadConfig(config.ConfigPath)
		if err != nil {
			return nil, err
		}
		file = loaded
	}

	if !given("log-level", "l") {
		config.LogLevel = firstNonEmpty(strings.ToLower(os.Getenv(EnvLogLevel)), file.LogLevel, DefaultLogLevel)
	}
	config.LogLevel = strings.ToLower(config.LogLevel)

	if !given("encoding", "e") {
		config.Encoding = firstNonEmpty(os.Getenv(EnvEncoding), file.Encoding, DefaultEncoding)
	}

	if !given("timeout", "t") {
		timeoutSec = file.Timeout
		// 環境変数の不正な値は無視する
		if timeoutEnv := os.Getenv(EnvTimeout); timeoutEnv != "" {
			if t, err := strconv.Atoi(timeoutEnv); err == nil && t > 0 {
				timeoutSec = t
			}
		}
	}

	if !given("output", "o") {
		config.OutputPath = file.Output
	} else if config.Interpret {
		return nil, errors.New("--output cannot be used with --interpret")
	}
	if config.Interpret {
		config.OutputPath = ""
	}

	if !given("quiet", "q") {
		config.Quiet = file.Quiet
	}

	// タイムアウトの検証
	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	// ログレベルの検証
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	// 位置引数（スクリプトファイル）
	switch fs.NArg() {
	case 0:
		return nil, errors.New("no script file given (see --help)")
	case 1:
		config.ScriptPath = fs.Arg(0)
	default:
		return nil, fmt.Errorf("too many arguments: %s", strings.Join(fs.Args()[1:], " "))
	}

	return config, nil
}

// configFile は ParseArgs 内のローカル変数 config と区別するための別名
type configFile = config.File

func loadConfig(path string) (*configFile, error) {
	return config.Load(path)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// boolFlags は値を取らないフラグ
var boolFlags = map[string]bool{
	"-i": true, "--interpret": true,
	"-q": true, "--quiet": true,
	"-v": true, "--version": true,
	"-h": true, "--help": true,
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--" 以降はすべて位置引数
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}

		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			// -o out.sh のように次の引数が値の場合
			if strings.Contains(arg, "=") || boolFlags[arg] {
				continue
			}
			if i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}

	if len(positional) == 0 {
		return flags
	}
	return append(append(flags, "--"), positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `%s

Usage:
  rbgn [options] FILE

Arguments:
  FILE                        実行またはコンパイルするRBGNスクリプト

Options:
  -i, --interpret             スクリプトを解釈実行する（省略時はbashへコンパイル）
  -o, --output <file>         コンパイル結果の出力先（省略時はコンソールに表示）
  -e, --encoding <name>       スクリプトの文字コード（デフォルト: utf-8、例: shift_jis, euc-jp）
  -t, --timeout <seconds>     指定秒数後に実行を中断（デフォルト: 無制限）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  -c, --config <file>         YAML設定ファイル
  -q, --quiet                 起動時のバナーを表示しない
  -v, --version               バージョンを表示
  -h, --help                  このヘルプを表示

Environment Variables:
  RBGN_LOG_LEVEL=<level>      ログレベル
  RBGN_ENCODING=<name>        スクリプトの文字コード
  RBGN_TIMEOUT=<seconds>      タイムアウト時間（秒）

Examples:
  rbgn hello.bgn                  bashへコンパイルしてコンソールに表示
  rbgn hello.bgn -o hello.sh      bashへコンパイルしてファイルに保存
  rbgn -i hello.bgn               インタプリタで実行
  rbgn -i -e shift_jis old.bgn    Shift_JISのスクリプトを実行
  rbgn -i --timeout 10 loop.bgn   10秒後に中断
`, Banner())
}
