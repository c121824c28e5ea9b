package main

import (
	"github.com/pkg/errors"

	"github.com/DeivFF/study-space-wire-57-sub000/storage/database"
)

var migrateFunc = database.Migrate // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errors.New("no database connection")
	}
	return migrateFunc(cli.db, args[0], args[1:]...)
}
