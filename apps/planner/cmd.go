package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/gommon/color"
	"github.com/pkg/errors"

	"github.com/DeivFF/study-space-wire-57-sub000/core"
	"github.com/DeivFF/study-space-wire-57-sub000/core/clock"
	"github.com/DeivFF/study-space-wire-57-sub000/core/planner"
)

var (
	todayFunc = clock.Today // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db    *sqlx.DB
	svc   *planner.Service
	out   io.Writer
	color *color.Color
}

func newCommandLine(db *sqlx.DB, svc *planner.Service, out io.Writer, colored bool) *commandLine {
	c := color.New()
	if !colored {
		c.Disable()
	}
	return &commandLine{db: db, svc: svc, out: out, color: c}
}

func (cli *commandLine) printUsage() {
	cli.printf("Usage:\n")
	cli.printf("  migrate COMMAND [ARGS]   - run database migrations (up, down, status, version, ...)\n")
	cli.printf("  subject add|list|rm      - manage subjects\n")
	cli.printf("  task add|list|rm         - manage the task backlog\n")
	cli.printf("  avail set|show           - manage the weekly availability\n")
	cli.printf("  session add|edit|done|list|rm - manage study sessions\n")
	cli.printf("  plan [-today DATE]       - schedule the backlog into next week\n")
	cli.printf("  repeat [FLAGS]           - expand a recurring session\n")
	cli.printf("Run a command with -h for its flags.\n")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()
	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "subject":
		return cli.subject(ctx, args[2:])
	case "task":
		return cli.task(ctx, args[2:])
	case "avail":
		return cli.avail(ctx, args[2:])
	case "session":
		return cli.session(ctx, args[2:])
	case "plan":
		return cli.plan(ctx, args[2:])
	case "repeat":
		return cli.repeat(ctx, args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, args...)
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	return nil
}

// subcommand splits "add -x 1" into "add" and its flags.
func (cli *commandLine) subcommand(args []string) (string, []string, error) {
	if len(args) == 0 {
		cli.printUsage()
		return "", nil, errHelp
	}
	return args[0], args[1:], nil
}

// describeError renders validation failures field by field.
func describeError(err error) string {
	flds := core.ErrorFields(err)
	if len(flds) == 0 {
		return err.Error()
	}
	names := make([]string, 0, len(flds))
	for name := range flds {
		names = append(names, name)
	}
	sort.Strings(names)
	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, name+": "+flds[name])
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}
