package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// Version is the ff build version, overridable at link time with
// -ldflags "-X github.com/foundryfind/ff/internal/cli.Version=...".
var Version = "dev"

// VersionCmd is ff's one subcommand.
func VersionCmd() *Command {
	return &Command{
		Flags: flag.NewFlagSet("version", flag.ContinueOnError),
		Usage: "version",
		Short: "Print the build version",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			o.Println("ff", Version)
			return nil
		},
	}
}
