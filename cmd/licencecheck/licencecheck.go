package main

import (
	"os"
	"time"

	"github.com/licencecheck/licencecheck/pkg/api"
	"github.com/licencecheck/licencecheck/pkg/dataimporter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("LICENCECHECK_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("LICENCECHECK_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "licencecheck",
		Description: "Daily driver licence feed processing, change reporting and fleet system upload",

		Commands: []*cli.Command{
			dataimporter.RegisterCLI(),
			dataimporter.RegisterParseCLI(),
			dataimporter.RegisterCompareCLI(),
			api.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
