package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "modernc.org/sqlite"

	"studio/internal/adapters/cli"
	emailPkg "studio/internal/adapters/email"
	"studio/internal/adapters/storage"
	"studio/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger(os.Stderr))

	var db *sql.DB
	env := cli.Env{
		DB: func() (*sql.DB, error) {
			if db != nil {
				return db, nil
			}
			opened, err := storage.Open(cfg.DBPath)
			if err != nil {
				return nil, err
			}
			db = opened
			return db, nil
		},
		SlowQuery: cfg.SlowQuery,
		Fees:      cfg.Fees,
		Sender:    emailPkg.NewNoopSender(),
		EmailFrom: cfg.EmailFrom,
	}
	if cfg.ResendKey != "" {
		env.Sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
	}

	err = cli.NewRootCmd(env).Execute()
	if db != nil {
		db.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
