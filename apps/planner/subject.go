package main

import (
	"context"

	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

func (cli *commandLine) subject(ctx context.Context, args []string) error {
	cmd, args, err := cli.subcommand(args)
	if err != nil {
		return err
	}

	switch cmd {
	case "add":
		fs := cli.newFlagSet("subject add")
		name := fs.String("name", "", "The subject's name.")
		clr := fs.String("color", "", "Optional display color, e.g. #3366ff.")
		if err = parseFlags(fs, args); err != nil {
			return err
		}
		if *name == "" {
			fs.Usage()
			return errHelp
		}
		subj, err := cli.svc.CreateSubject(ctx, study.NewSubject{Name: *name, Color: *clr})
		if err != nil {
			return err
		}
		cli.printf("%s subject %s %s\n", cli.color.Green("added"), cli.color.Bold(subj.Name), subj.ID)
	case "list":
		subjects, err := cli.svc.QuerySubjects(ctx)
		if err != nil {
			return err
		}
		for _, s := range subjects {
			cli.printf("%s  %s %s\n", s.ID, cli.color.Bold(s.Name), s.Color)
		}
	case "rm":
		fs := cli.newFlagSet("subject rm")
		id := fs.String("id", "", "The subject's id. Its tasks and sessions are deleted too.")
		if err = parseFlags(fs, args); err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		if err = cli.svc.DeleteSubject(ctx, *id); err != nil {
			return err
		}
		cli.printf("%s subject %s\n", cli.color.Yellow("deleted"), *id)
	default:
		cli.printUsage()
		return errHelp
	}
	return nil
}
