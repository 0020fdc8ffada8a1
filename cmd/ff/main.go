// Command ff is an interactive terminal fuzzy finder: it streams
// lines from standard input, presents a live incremental filter
// prompt, and prints the selection on exit.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/foundryfind/ff/internal/cli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	exitCode := cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env, sigCh)

	os.Exit(exitCode)
}
