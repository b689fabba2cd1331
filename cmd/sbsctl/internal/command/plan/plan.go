// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package plan implements the "plan" command.
package plan

import (
	"context"
	"time"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/sbsctl/cmd/sbsctl/internal/sbsctlcmd"
	"github.com/bufdev/sbsctl/internal/pkg/cliio"
	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlplan"
	"github.com/bufdev/sbsctl/internal/standard/xos"
	"github.com/bufdev/sbsctl/internal/standard/xtime"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

const (
	// modeFlagName is the flag name for the planning mode.
	modeFlagName = "mode"
	// formatFlagName is the flag name for the output format.
	formatFlagName = "format"
)

// NewCommand returns a new plan command that lists the dates a download would fetch.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "List the dates a download would fetch, without opening the portal",
		Long: `List the dates a download would fetch, without opening the portal.

Uses the same planning as "download daily" and "download monthly". Month
directories are created as they would be by a download.`,
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
	// Dir is the base directory of the spreadsheets.
	Dir string
	// Mode is daily or monthly.
	Mode string
	// Start is the first month (YYYY-MM), monthly mode only.
	Start string
	// End is the last month (YYYY-MM), monthly mode only.
	End string
	// Format is the output format (table, csv, json).
	Format string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	sbsctlcmd.BindDirFlag(flagSet, &f.Dir)
	flagSet.StringVar(&f.Mode, modeFlagName, "daily", "The planning mode (daily, monthly)")
	sbsctlcmd.BindRangeFlags(flagSet, &f.Start, &f.End)
	flagSet.StringVar(&f.Format, formatFlagName, "table", "Output format (table, csv, json)")
}

func run(_ context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	mode, err := sbsctlplan.ParseMode(flags.Mode)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	// The plan only needs the artifact tree, not the config file.
	dirPath, err := xos.AbsDir(flags.Dir)
	if err != nil {
		return err
	}
	request := &sbsctlplan.Request{
		Mode:        mode,
		BaseDirPath: dirPath,
	}
	if mode == sbsctlplan.ModeMonthly {
		if flags.Start == "" || flags.End == "" {
			return appcmd.NewInvalidArgumentErrorf("--%s and --%s are required in monthly mode", sbsctlcmd.StartFlagName, sbsctlcmd.EndFlagName)
		}
		request.Start, request.End, err = sbsctlcmd.ParseRange(flags.Start, flags.End)
		if err != nil {
			return appcmd.NewInvalidArgumentError(err.Error())
		}
	}
	workItems, err := sbsctlplan.Plan(afero.NewOsFs(), request, xtime.TimeToDate(time.Now()))
	if err != nil {
		return err
	}
	return cliio.Write(container.Stdout(), format, sbsctlplan.WorkItemHeaders(), workItems...)
}
