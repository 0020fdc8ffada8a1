// Package cli wires ff's command-line surface: global flag parsing,
// the non-interactive query surface, and the interactive entry point,
// using the Command/IO framework (command.go, io.go) for flag help and
// warning-aware output.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/foundryfind/ff/internal/config"
	"github.com/foundryfind/ff/internal/tui"

	flag "github.com/spf13/pflag"
)

const globalOptionsHelp = `  -h, --help                Show help
  -C, --cwd <dir>           Run as if started in <dir>
  -c, --config <file>       Use specified config file (default .ff.json)
      --case-sensitive      Disable ASCII case folding
      --scheme <name>       Ordering scheme: default|path|history
  -q, --query <text>        Non-interactive: print top matches for <text> and exit
      --top <n>             Limit non-interactive results (default from config, 30)`

// Run is ff's main entry point. Returns the process exit code. sigCh
// may be nil (e.g. in tests) when signal handling is not needed.
func Run(stdin io.Reader, out, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globalFlags := flag.NewFlagSet("ff", flag.ContinueOnError)
	globalFlags.SetInterspersed(false)
	globalFlags.Usage = func() {}
	globalFlags.SetOutput(&strings.Builder{})

	flagHelp := globalFlags.BoolP("help", "h", false, "Show help")
	flagCwd := globalFlags.StringP("cwd", "C", "", "Run as if started in `dir`")
	flagConfig := globalFlags.StringP("config", "c", "", "Use specified config `file`")
	flagCaseSensitive := globalFlags.Bool("case-sensitive", false, "Disable ASCII case folding")
	flagScheme := globalFlags.String("scheme", "", "Ordering scheme: default|path|history")
	flagQuery := globalFlags.StringP("query", "q", "", "Non-interactive: print top matches and exit")
	flagTop := globalFlags.Int("top", 0, "Limit non-interactive results")

	if err := globalFlags.Parse(args[1:]); err != nil {
		fprintln(errOut, "error:", err)
		printGlobalOptions(errOut)

		return 1
	}

	if *flagHelp {
		printUsage(out)
		return 0
	}

	workDir := *flagCwd
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			fprintln(errOut, "error:", err)
			return 1
		}

		workDir = wd
	}

	overrides := config.Overrides{}
	if globalFlags.Changed("config") {
		overrides.ConfigFile = flagConfig
	}

	if globalFlags.Changed("case-sensitive") {
		overrides.CaseSensitive = flagCaseSensitive
	}

	if globalFlags.Changed("scheme") {
		overrides.Scheme = flagScheme
	}

	if globalFlags.Changed("top") {
		overrides.TopK = flagTop
	}

	cfg, err := config.Load(workDir, overrides)
	if err != nil {
		fprintln(errOut, "error:", err)
		return 1
	}

	positional := globalFlags.Args()
	if len(positional) > 0 && positional[0] == "version" {
		cmdIO := NewIO(out, errOut)
		code := VersionCmd().Run(context.Background(), cmdIO, positional[1:])

		if code != 0 {
			return code
		}

		return cmdIO.Finish()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan int, 1)

	go func() {
		done <- runMode(ctx, stdin, out, errOut, *flagQuery, globalFlags.Changed("query"), cfg)
	}()

	select {
	case exitCode := <-done:
		return exitCode
	case <-sigCh:
		fprintln(errOut, "shutting down...")
		cancel()
	}

	select {
	case <-done:
		return 130
	case <-time.After(5 * time.Second):
		fprintln(errOut, "graceful shutdown timed out, forced exit (130)")
		return 130
	case <-sigCh:
		fprintln(errOut, "graceful shutdown interrupted, forced exit (130)")
		return 130
	}
}

func runMode(ctx context.Context, stdin io.Reader, out, errOut io.Writer, query string, hasQuery bool, cfg config.Config) int {
	cmdIO := NewIO(out, errOut)

	if hasQuery {
		if err := runQuery(ctx, stdin, cmdIO, query, cfg); err != nil {
			fprintln(errOut, "error:", err)
			return 1
		}

		return cmdIO.Finish()
	}

	if err := tui.Run(ctx, stdin, out, errOut, cfg); err != nil {
		fprintln(errOut, "error:", err)
		return 1
	}

	return cmdIO.Finish()
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printGlobalOptions(w io.Writer) {
	fprintln(w, "Usage: ff [flags]")
	fprintln(w)
	fprintln(w, "Flags:")
	fprintln(w, globalOptionsHelp)
	fprintln(w)
	fprintln(w, "Run 'ff --help' for details.")
}

func printUsage(w io.Writer) {
	fprintln(w, "ff - an interactive fuzzy finder")
	fprintln(w)
	fprintln(w, "Usage: ff [flags]")
	fprintln(w)
	fprintln(w, globalOptionsHelp)
	fprintln(w)
	fprintln(w, "Commands:")
	fprintln(w, "  version                  Print the build version")
}
