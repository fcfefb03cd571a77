// Command kvscan reads keys and hashes from a Redis-compatible store using
// cursor scans, and can serve the same reads over HTTP.
//
//	kvscan keys  [--match P] [--type T] [--count N] [--cursor C]
//	kvscan hscan KEY... [--match P] [--count N] [--cursor C]
//	kvscan hget  KEY FIELD
//	kvscan serve
//
// Every command accepts --config, --env-file and --addr. An interrupted scan
// prints the cursor to resume from.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/logger"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type command struct {
	usage string
	flags func(*options) *pflag.FlagSet
	run   func(ctx context.Context, app *cliApp, args []string) error
}

var commands = map[string]command{
	"keys":  {usage: "keys [flags]", flags: scanFlags("keys", true), run: runKeys},
	"hscan": {usage: "hscan KEY... [flags]", flags: scanFlags("hscan", false), run: runHScan},
	"hget":  {usage: "hget KEY FIELD", flags: baseFlags("hget"), run: runHGet},
	"serve": {usage: "serve [flags]", flags: serveFlags, run: runServe},
}

// options holds the parsed command-line flags.
type options struct {
	configFile string
	envFile    string
	addr       string
	match      string
	typ        string
	count      int64
	cursor     string
	port       int
}

func baseFlags(name string) func(*options) *pflag.FlagSet {
	return func(o *options) *pflag.FlagSet {
		fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
		fs.StringVarP(&o.configFile, "config", "c", "", "config file (default: ./kvscan.yaml)")
		fs.StringVar(&o.envFile, "env-file", "", "env file loaded before reading GOKV_* variables")
		fs.StringVarP(&o.addr, "addr", "a", "", "store address host:port, overrides redis.addr")
		return fs
	}
}

func scanFlags(name string, keySpace bool) func(*options) *pflag.FlagSet {
	return func(o *options) *pflag.FlagSet {
		fs := baseFlags(name)(o)
		fs.StringVarP(&o.match, "match", "m", "", "glob pattern elements must match")
		fs.Int64VarP(&o.count, "count", "n", 0, "batch size hint per step (default: redis.scan_count)")
		fs.StringVar(&o.cursor, "cursor", "", "resume from a cursor printed by an earlier run")
		if keySpace {
			fs.StringVarP(&o.typ, "type", "t", "", "only keys of this type")
		}
		return fs
	}
}

func serveFlags(o *options) *pflag.FlagSet {
	fs := baseFlags("serve")(o)
	fs.IntVarP(&o.port, "port", "p", 0, "listen port, overrides server.port")
	return fs
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "kvscan: unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}

	var opts options
	fs := cmd.flags(&opts)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: kvscan %s\n\n%s", cmd.usage, fs.FlagUsages())
	}
	if err := fs.Parse(args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	app, err := newCLIApp(ctx, &opts, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "kvscan: %v\n", err)
		return 1
	}
	defer app.shutdownTelemetry()

	err = app.RunTask(ctx, func(ctx context.Context) error {
		return cmd.run(ctx, app, fs.Args())
	})
	if err != nil {
		app.Logger.Debug("command failed", logger.MergeWithError(logger.Fields(logger.FieldCommand, args[0]), err))
		fmt.Fprintf(stderr, "kvscan %s: %v\n", args[0], err)
		return exitCode(err)
	}
	return 0
}

// exitCode maps an error to a process exit code: 2 for bad arguments, 3 for
// a missing key or field, 130 for an interrupt and 1 for everything else.
func exitCode(err error) int {
	switch {
	case errors.IsInvalidArgument(err), errors.IsInvalidCursor(err):
		return 2
	case errors.IsCancelled(err):
		return 130
	}
	if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.ErrCodeNotFound {
		return 3
	}
	return 1
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, "  kvscan "+commands[name].usage)
	}
	fmt.Fprintf(w, "usage:\n%s\n\nRun 'kvscan COMMAND --help' for flags.\n", strings.Join(lines, "\n"))
}
