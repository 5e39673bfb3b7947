package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Respect container CPU quotas when sizing the worker pool.
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := notifyContext(context.Background())
	defer stop()

	os.Exit(run(ctx, os.Args[1:], DefaultEnv()))
}

// run dispatches the command and returns a process exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch args[0] {
	case "convert":
		flags, positional, err := parseConvertFlags(args[1:])
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return ExitSuccess
			}
			fmt.Fprintln(env.Stderr, err)
			return ExitUsage
		}
		if err := runConvert(ctx, positional, flags, env); err != nil {
			fmt.Fprintf(env.Stderr, "Error: %v\n", err)
			return exitCodeFor(err)
		}
		return ExitSuccess

	case "doctor":
		return runDoctorCmd(args[1:], env)

	case "version":
		fmt.Fprintf(env.Stdout, "nb2html %s\n", Version)
		return ExitSuccess

	case "help", "-h", "--help":
		runHelp(args[1:], env)
		return ExitSuccess

	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
}
