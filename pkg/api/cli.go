package api

import (
	"github.com/licencecheck/licencecheck/pkg/config"
	"github.com/licencecheck/licencecheck/pkg/dataimporter/manager"
	"github.com/licencecheck/licencecheck/pkg/workspace"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve snapshots, change reports and summaries over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   config.DefaultPath,
				Usage:   "Path to the config file (.yaml or .ini)",
				EnvVars: []string{"LICENCECHECK_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "listen",
				Value: ":8080",
				Usage: "listen target for the web server",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			w := workspace.New(cfg.BaseDir)

			store, closeStore, err := manager.OpenStore(cfg, w)
			if err != nil {
				return err
			}
			defer closeStore()

			return SetupServer(c.String("listen"), store, w, cfg.Policy.ExpiryWindowDays)
		},
	}
}
