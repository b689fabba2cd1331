// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package schedule implements the "schedule" command.
package schedule

import (
	"context"
	"fmt"
	"time"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/sbsctl/cmd/sbsctl/internal/sbsctlcmd"
	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlplan"
	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlschedule"
	"github.com/spf13/pflag"
)

// nextFlagName is the flag name for printing upcoming run times.
const nextFlagName = "next"

// NewCommand returns a new schedule command that runs the daily download on the configured schedule.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Run the daily download on the configured cron schedule",
		Long: `Run the daily download on the configured cron schedule.

Runs in the foreground until interrupted. The schedule is read from
schedule.cron in sbsctl.yaml and defaults to 09:00 on weekdays. A failed
run is logged and retried at the next scheduled time; dates already on
disk are skipped.

With --next, prints the upcoming run times and exits.`,
		Args: appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	// Dir is the base directory containing sbsctl.yaml and the spreadsheets.
	Dir string
	// Next is the number of upcoming run times to print.
	Next int
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	sbsctlcmd.BindDirFlag(flagSet, &f.Dir)
	flagSet.IntVar(&f.Next, nextFlagName, 0, "Print the next N run times and exit")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	if flags.Next < 0 {
		return appcmd.NewInvalidArgumentErrorf("--%s must not be negative", nextFlagName)
	}
	config, err := sbsctlcmd.ReadConfig(flags.Dir)
	if err != nil {
		return err
	}
	if flags.Next > 0 {
		runTimes, err := sbsctlschedule.NextRunTimes(config.ScheduleCron, time.Now(), flags.Next)
		if err != nil {
			return err
		}
		for _, runTime := range runTimes {
			if _, err := fmt.Fprintln(container.Stdout(), runTime.Format(time.RFC3339)); err != nil {
				return err
			}
		}
		return nil
	}
	downloader := sbsctlcmd.NewDownloader(container, config)
	logger := container.Logger()
	return sbsctlschedule.Run(
		ctx,
		logger,
		config.ScheduleCron,
		func(ctx context.Context) error {
			result, err := downloader.Download(
				ctx,
				&sbsctlplan.Request{
					Mode:        sbsctlplan.ModeDaily,
					BaseDirPath: config.DirPath,
				},
			)
			if err != nil {
				return err
			}
			logger.Info(result.Message(), "run_id", result.RunID)
			return nil
		},
	)
}
