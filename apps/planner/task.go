package main

import (
	"context"
	"strings"

	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

func (cli *commandLine) task(ctx context.Context, args []string) error {
	cmd, args, err := cli.subcommand(args)
	if err != nil {
		return err
	}

	switch cmd {
	case "add":
		fs := cli.newFlagSet("task add")
		subjectID := fs.String("subject", "", "The subject's id.")
		title := fs.String("title", "", "What to study.")
		est := fs.Int("est", 0, "Estimated minutes of work.")
		priority := fs.Int("priority", 0, "Lower is scheduled first.")
		tags := fs.String("tags", "", "Comma separated tags.")
		if err = parseFlags(fs, args); err != nil {
			return err
		}
		if *subjectID == "" || *title == "" {
			fs.Usage()
			return errHelp
		}
		task, err := cli.svc.CreateTask(ctx, study.NewTask{
			SubjectID: *subjectID,
			Title:     *title,
			EstMin:    *est,
			Priority:  *priority,
			Tags:      splitList(*tags),
		})
		if err != nil {
			return err
		}
		cli.printf("%s task %s %s\n", cli.color.Green("added"), cli.color.Bold(task.Title), task.ID)
	case "list":
		tasks, err := cli.svc.QueryBacklog(ctx)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			cli.printf("%s  p%d %4d min  %s", t.ID, t.Priority, t.EstMin, cli.color.Bold(t.Title))
			if len(t.Tags) > 0 {
				cli.printf(" %s", cli.color.Grey("#"+strings.Join(t.Tags, " #")))
			}
			cli.printf("\n")
		}
	case "rm":
		fs := cli.newFlagSet("task rm")
		id := fs.String("id", "", "The task's id.")
		if err = parseFlags(fs, args); err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		if err = cli.svc.DeleteTask(ctx, *id); err != nil {
			return err
		}
		cli.printf("%s task %s\n", cli.color.Yellow("deleted"), *id)
	default:
		cli.printUsage()
		return errHelp
	}
	return nil
}
