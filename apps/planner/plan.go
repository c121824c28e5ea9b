package main

import (
	"context"

	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

func (cli *commandLine) plan(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("plan")
	today := fs.String("today", "", "Plan as if today were this day, YYYY-MM-DD. Defaults to today.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	day, err := parseDate("today", *today)
	if err != nil {
		return err
	}
	if day.IsZero() {
		day = todayFunc()
	}

	plan, err := cli.svc.AutoSchedule(ctx, day)
	if err != nil {
		return err
	}
	cli.printf("%s %s - %s: %d session(s), %d min\n",
		cli.color.Bold("plan"), plan.From, plan.To, len(plan.Sessions), plan.TotalMin())
	for _, s := range plan.Sessions {
		cli.printSession(s)
	}
	if n := plan.Backlog.Len(); n > 0 {
		cli.printf("%s %d task(s) left in the backlog\n", cli.color.Yellow("note"), n)
	}
	return nil
}

func (cli *commandLine) repeat(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("repeat")
	sf := addSessionFlags(fs)
	freq := fs.String("freq", study.FrequencyWeekly, "none, daily or weekly.")
	days := fs.String("days", "", "Weekdays of a weekly rule, e.g. mon,wed. Defaults to the session's weekday.")
	until := fs.String("until", "", "Last day, YYYY-MM-DD. Defaults to the scheduling horizon.")
	save := fs.Bool("save", false, "Save the instances. Without it the instances are only listed.")
	keep := fs.Bool("keep-conflicts", false, "With -save, also save instances that overlap other sessions.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if sf.missing() {
		fs.Usage()
		return errHelp
	}

	ns, err := sf.newSession()
	if err != nil {
		return err
	}
	rule := study.RecurrenceRule{Frequency: *freq}
	if rule.Weekdays, err = parseWeekdays("days", *days); err != nil {
		return err
	}
	if rule.Until, err = parseDate("until", *until); err != nil {
		return err
	}

	instances, err := cli.svc.ExpandRecurrence(ctx, ns, rule)
	if err != nil {
		return err
	}
	var conflicts int
	for _, inst := range instances {
		if inst.Conflict {
			conflicts++
			cli.printf("%s ", cli.color.Red("conflict"))
		}
		cli.printSession(inst.Session)
	}
	cli.printf("%d instance(s), %d conflict(s)\n", len(instances), conflicts)
	if !*save {
		return nil
	}

	saved, err := cli.svc.SaveInstances(ctx, instances, *keep)
	if err != nil {
		return err
	}
	cli.printf("%s %d session(s)\n", cli.color.Green("saved"), len(saved))
	return nil
}
