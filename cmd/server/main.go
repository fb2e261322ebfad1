package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/yukikurage/listing-api/internal/config"
)

func main() {
	cfg := config.Load()

	app := &cli.App{
		Name:  "listing-api",
		Usage: "listing marketplace API",
		Commands: []*cli.Command{
			serveCommand(cfg),
			migrateCommand(cfg),
			forwardWebhooksCommand(cfg),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
