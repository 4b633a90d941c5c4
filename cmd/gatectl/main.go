package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gatekeeper/internal/gatectl"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)
	app := gatectl.NewApp(cfg, os.Stdout, logger)

	if err := app.Run(ctx, gatectl.CommandArgs(os.Args[1:])); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, gatectl.ErrUsage) || errors.Is(err, gatectl.ErrUnknownCommand) {
			os.Exit(2)
		}
		os.Exit(1)
	}

}
