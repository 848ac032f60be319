package dataimporter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/kr/pretty"
	"github.com/licencecheck/licencecheck/pkg/comparator"
	"github.com/licencecheck/licencecheck/pkg/config"
	"github.com/licencecheck/licencecheck/pkg/dataimporter/formats/aris"
	"github.com/licencecheck/licencecheck/pkg/dataimporter/manager"
	"github.com/licencecheck/licencecheck/pkg/licence"
	"github.com/licencecheck/licencecheck/pkg/snapshot"
	"github.com/licencecheck/licencecheck/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "Path to the config file (.yaml or .ini)",
	Value:   config.DefaultPath,
	EnvVars: []string{"LICENCECHECK_CONFIG"},
}

var dateFlag = &cli.StringFlag{
	Name:  "date",
	Usage: "Run as if today were this date (YYYY-MM-DD)",
}

func dateValue(c *cli.Context) (time.Time, error) {
	if c.String("date") == "" {
		return util.DateOnly(time.Now()), nil
	}

	date, err := util.ParseDate(c.String("date"))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date: %w", err)
	}

	return date, nil
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the daily licence check",
		Flags: []cli.Flag{
			configFlag,
			dateFlag,
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Process the input even if it was already processed today",
			},
			&cli.BoolFlag{
				Name:  "skip-upload",
				Usage: "Stage the upload file but do not run the data loader",
			},
			&cli.BoolFlag{
				Name:  "skip-email",
				Usage: "Write reports but do not send email",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			date, err := dateValue(c)
			if err != nil {
				return err
			}

			ctx := context.Background()

			runner, closeRunner, err := manager.NewRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeRunner()

			if err := runner.Workspace.Bootstrap(); err != nil {
				return err
			}
			restoreLog, err := manager.TeeLog(runner.Workspace.LogPath(date))
			if err != nil {
				return err
			}
			defer restoreLog()

			outcome, err := runner.Run(ctx, manager.Options{
				Date:       date,
				Force:      c.Bool("force"),
				SkipUpload: c.Bool("skip-upload"),
				SkipEmail:  c.Bool("skip-email"),
			})
			if err != nil {
				return err
			}

			if !outcome.Skipped {
				log.Info().Str("report", outcome.ReportPath).Msg("Daily licence check finished")
			}

			return nil
		},
	}
}

func RegisterParseCLI() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse a fixed width driver feed",
		ArgsUsage: "<feed file>",
		Flags: []cli.Flag{
			dateFlag,
			&cli.StringFlag{
				Name:  "out",
				Usage: "Write the parsed records as a snapshot workbook",
			},
			&cli.BoolFlag{
				Name:  "dump",
				Usage: "Print the parsed records",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one feed file", 1)
			}

			file, err := os.Open(c.Args().First())
			if err != nil {
				return err
			}
			defer file.Close()

			feed := &aris.Feed{}
			if err := feed.ParseFile(file); err != nil {
				return err
			}

			for _, issue := range aris.Validate(feed.Records) {
				log.Warn().Msg(issue.String())
			}

			if c.Bool("dump") {
				pretty.Println(feed.Records)
			}

			log.Info().Int("records", len(feed.Records)).Msg("Parsed feed")

			if out := c.String("out"); out != "" {
				outFile, err := os.Create(out)
				if err != nil {
					return err
				}
				defer outFile.Close()

				if err := snapshot.WriteWorkbook(outFile, feed.Records); err != nil {
					return err
				}

				log.Info().Str("path", out).Msg("Written snapshot workbook")
			}

			return nil
		},
	}
}

func readWorkbook(path string, date time.Time) (*licence.Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return snapshot.ReadWorkbook(file, date)
}

func RegisterCompareCLI() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "Compare two snapshot workbooks and print the change report as JSON",
		ArgsUsage: "<today workbook> <yesterday workbook>",
		Flags: []cli.Flag{
			dateFlag,
			&cli.IntFlag{
				Name:  "window",
				Usage: "Expiry window in days",
				Value: comparator.DefaultExpiryWindowDays,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("expected today's and yesterday's workbooks", 1)
			}
			if c.Int("window") < 0 {
				return cli.Exit("--window must not be negative", 1)
			}

			date, err := dateValue(c)
			if err != nil {
				return err
			}

			today, err := readWorkbook(c.Args().Get(0), date)
			if err != nil {
				return err
			}
			yesterday, err := readWorkbook(c.Args().Get(1), date.AddDate(0, 0, -1))
			if err != nil {
				return err
			}

			report := comparator.New(date, c.Int("window")).Compare(today, yesterday)

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")

			return encoder.Encode(report)
		},
	}
}
