package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/trezcool/prodigy/core"
	"github.com/trezcool/prodigy/core/session"
	"github.com/trezcool/prodigy/services/backend"
	logsvc "github.com/trezcool/prodigy/services/logger"
	"github.com/trezcool/prodigy/services/notify"
	"github.com/trezcool/prodigy/storage/session/filestore"
)

func main() {
	conf, err := core.LoadConfig()
	errAndDie(err)

	console, err := logsvc.NewZapLogger(conf)
	errAndDie(err)
	defer func() { _ = console.Sync() }()
	logger := logsvc.NewRollbarLogger(console, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// set up the session
	client, err := backend.New(backend.Options{
		BaseURL:   conf.Backend.BaseURL,
		Timeout:   conf.Backend.Timeout,
		UserAgent: conf.AppName + "/" + conf.Build,
	}, logger)
	errAndDie(err)
	mgr := session.NewManager(filestore.New(conf.Session.Dir), client, logger)
	defer mgr.Close()
	client.Authorize(mgr)
	mgr.Init(ctx)

	// start CLI
	cli := newCommandLine(os.Stdout, mgr, client, notify.NewConsole(os.Stdout, true), newOutbox(conf.Session.Dir))
	if err := cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
