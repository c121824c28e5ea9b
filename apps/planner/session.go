package main

import (
	"context"
	"flag"

	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

// sessionFlags are shared by "session add" and "repeat".
type sessionFlags struct {
	subjectID *string
	title     *string
	date      *string
	start     *string
	dur       *int
	tags      *string
	notes     *string
}

func addSessionFlags(fs *flag.FlagSet) sessionFlags {
	return sessionFlags{
		subjectID: fs.String("subject", "", "The subject's id."),
		title:     fs.String("title", "", "The session's title."),
		date:      fs.String("date", "", "Day of the session, YYYY-MM-DD."),
		start:     fs.String("start", "", "Start time, HH:MM."),
		dur:       fs.Int("dur", 0, "Duration in minutes."),
		tags:      fs.String("tags", "", "Comma separated tags."),
		notes:     fs.String("notes", "", "Free text notes."),
	}
}

func (sf sessionFlags) missing() bool {
	return *sf.subjectID == "" || *sf.title == "" || *sf.date == "" || *sf.start == ""
}

func (sf sessionFlags) newSession() (study.NewSession, error) {
	date, err := parseDate("date", *sf.date)
	if err != nil {
		return study.NewSession{}, err
	}
	start, err := parseTime("start", *sf.start)
	if err != nil {
		return study.NewSession{}, err
	}
	return study.NewSession{
		SubjectID:   *sf.subjectID,
		Title:       *sf.title,
		Date:        date,
		Start:       start,
		DurationMin: *sf.dur,
		Tags:        splitList(*sf.tags),
		Notes:       *sf.notes,
	}, nil
}

func (cli *commandLine) session(ctx context.Context, args []string) error {
	cmd, args, err := cli.subcommand(args)
	if err != nil {
		return err
	}

	switch cmd {
	case "add":
		fs := cli.newFlagSet("session add")
		sf := addSessionFlags(fs)
		force := fs.Bool("force", false, "Save even if it overlaps another session.")
		if err = parseFlags(fs, args); err != nil {
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
		sess, err := cli.svc.CreateSession(ctx, ns, *force)
		if err != nil {
			return err
		}
		cli.printf("%s ", cli.color.Green("added"))
		cli.printSession(sess)
	case "edit":
		return cli.editSession(ctx, args)
	case "done":
		fs := cli.newFlagSet("session done")
		id := fs.String("id", "", "The session's id.")
		actual := fs.Int("actual", -1, "Minutes actually studied. Defaults to the planned duration.")
		notes := fs.String("notes", "", "Free text notes.")
		if err = parseFlags(fs, args); err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		var actualMin *int
		if *actual >= 0 {
			actualMin = actual
		}
		sess, err := cli.svc.CompleteSession(ctx, *id, actualMin, *notes)
		if err != nil {
			return err
		}
		cli.printf("%s ", cli.color.Green("completed"))
		cli.printSession(sess)
	case "list":
		fs := cli.newFlagSet("session list")
		from := fs.String("from", "", "First day, YYYY-MM-DD.")
		to := fs.String("to", "", "Last day, YYYY-MM-DD.")
		subjectID := fs.String("subject", "", "Only this subject's sessions.")
		status := fs.String("status", "", "open or done.")
		if err = parseFlags(fs, args); err != nil {
			return err
		}
		filter := study.SessionFilter{SubjectID: *subjectID, Status: *status}
		if filter.From, err = parseDate("from", *from); err != nil {
			return err
		}
		if filter.To, err = parseDate("to", *to); err != nil {
			return err
		}
		sessions, err := cli.svc.QuerySessions(ctx, filter)
		if err != nil {
			return err
		}
		for _, s := range sessions {
			cli.printSession(s)
		}
	case "rm":
		fs := cli.newFlagSet("session rm")
		id := fs.String("id", "", "The session's id.")
		if err = parseFlags(fs, args); err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		if err = cli.svc.DeleteSession(ctx, *id); err != nil {
			return err
		}
		cli.printf("%s session %s\n", cli.color.Yellow("deleted"), *id)
	default:
		cli.printUsage()
		return errHelp
	}
	return nil
}

func (cli *commandLine) editSession(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("session edit")
	id := fs.String("id", "", "The session's id.")
	force := fs.Bool("force", false, "Save even if it overlaps another session.")
	var us study.UpdateSession
	set := map[string]bool{}
	title := fs.String("title", "", "New title.")
	date := fs.String("date", "", "New day, YYYY-MM-DD.")
	start := fs.String("start", "", "New start time, HH:MM.")
	dur := fs.Int("dur", 0, "New duration in minutes.")
	tags := fs.String("tags", "", "New comma separated tags.")
	notes := fs.String("notes", "", "New notes.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" {
		fs.Usage()
		return errHelp
	}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["title"] {
		us.Title = title
	}
	if set["date"] {
		d, err := parseDate("date", *date)
		if err != nil {
			return err
		}
		us.Date = &d
	}
	if set["start"] {
		t, err := parseTime("start", *start)
		if err != nil {
			return err
		}
		us.Start = &t
	}
	if set["dur"] {
		us.DurationMin = dur
	}
	if set["tags"] {
		us.Tags = append([]string{}, splitList(*tags)...)
	}
	if set["notes"] {
		us.Notes = notes
	}

	sess, err := cli.svc.UpdateSession(ctx, *id, us, *force)
	if err != nil {
		return err
	}
	cli.printf("%s ", cli.color.Green("updated"))
	cli.printSession(sess)
	return nil
}

func (cli *commandLine) printSession(s study.Session) {
	status := cli.color.Cyan(s.Status)
	if s.IsDone() {
		status = cli.color.Green(s.Status)
	}
	cli.printf("%s %s %s-%s  %s  %d min  %d pomo(s)  [%s]  %s\n",
		s.Date, s.Date.Weekday().String()[:3], s.Start, s.End(),
		cli.color.Bold(s.Title), s.DurationMin, s.Pomos, status, s.ID)
}
