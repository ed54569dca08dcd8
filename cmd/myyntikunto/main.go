package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/valuatum/myyntikunto/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config.LoadDotEnv()

	app := &cli.App{
		Name:  "myyntikunto",
		Usage: "valuation engine for Finnish small and medium-sized companies",
		Commands: []*cli.Command{
			serveCommand(),
			valuateCommand(),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
