package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/echoreply/ifconf/src/internal/api"
	"github.com/echoreply/ifconf/src/internal/commands"
	"github.com/echoreply/ifconf/src/internal/log"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	api.Version, api.Commit, api.Date = version, commit, date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := commands.NewRootCommand(&commands.AppContext{})
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warnf("Interrupted: %v", err)
			os.Exit(130)
		}
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
