package main

import (
	"context"

	"github.com/DeivFF/study-space-wire-57-sub000/core/clock"
	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

func (cli *commandLine) avail(ctx context.Context, args []string) error {
	cmd, args, err := cli.subcommand(args)
	if err != nil {
		return err
	}

	switch cmd {
	case "set":
		fs := cli.newFlagSet("avail set")
		day := fs.String("day", "", "Weekday name or number (0=Sunday).")
		slots := fs.String("slots", "", "Study windows, e.g. 08:00-10:00,14:00-16:00. Empty clears the day.")
		if err = parseFlags(fs, args); err != nil {
			return err
		}
		if *day == "" {
			fs.Usage()
			return errHelp
		}
		dow, err := clock.ParseWeekday(*day)
		if err != nil {
			return argError("day", err)
		}
		parsed, err := parseSlots("slots", *slots)
		if err != nil {
			return err
		}
		if err = cli.svc.SetAvailability(ctx, study.NewAvailability{Dow: dow, Slots: parsed}); err != nil {
			return err
		}
		cli.printf("%s availability for %s\n", cli.color.Green("saved"), dow)
	case "show":
		cal, err := cli.svc.GetCalendar(ctx)
		if err != nil {
			return err
		}
		for dow := clock.Monday; ; dow = (dow + 1) % clock.DaysPerWeek {
			cli.printf("%-9s", dow)
			windows := cal.Windows(dow)
			if len(windows) == 0 {
				cli.printf(" %s", cli.color.Grey("-"))
			}
			for _, w := range windows {
				cli.printf(" %s-%s", w.Start, w.End)
			}
			cli.printf("\n")
			if dow == clock.Sunday {
				break
			}
		}
	default:
		cli.printUsage()
		return errHelp
	}
	return nil
}
