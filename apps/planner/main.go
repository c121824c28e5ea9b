package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/DeivFF/study-space-wire-57-sub000/core"
	"github.com/DeivFF/study-space-wire-57-sub000/core/planner"
	"github.com/DeivFF/study-space-wire-57-sub000/core/schedule"
	emailsvc "github.com/DeivFF/study-space-wire-57-sub000/services/email"
	logsvc "github.com/DeivFF/study-space-wire-57-sub000/services/logger"
	"github.com/DeivFF/study-space-wire-57-sub000/storage/database"
	sqlxrepos "github.com/DeivFF/study-space-wire-57-sub000/storage/database/sqlx"
)

func main() {
	if err := start(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintln(os.Stderr, "error:", describeError(err))
		}
		os.Exit(1)
	}
}

func start(args []string) error {
	conf, err := core.NewConfig()
	if err != nil {
		return err
	}
	digestTo, err := conf.DigestAddresses()
	if err != nil {
		return err
	}
	logger := logsvc.New(os.Stderr, conf)
	if rl, ok := logger.(*logsvc.RollbarLogger); ok {
		defer rl.Flush()
	}

	// set up DB
	ctx := context.Background()
	if err = database.CreateIfNotExist(ctx, conf); err != nil {
		return err
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := schedule.NewPlanner(planner.EngineConfig(conf.Scheduler))
	if err != nil {
		return err
	}
	emails := emailsvc.New(conf, os.Stdout, logger)
	defer emails.Wait()

	// start CLI
	cli := newCommandLine(db, planner.NewService(planner.Options{
		Repo:     sqlxrepos.NewStudyRepository(db),
		Engine:   engine,
		Emails:   emails,
		Logger:   logger,
		DigestTo: digestTo,
	}), os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
	return cli.run(args)
}
