// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package downloadmonthly implements the "download monthly" command.
package downloadmonthly

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/sbsctl/cmd/sbsctl/internal/sbsctlcmd"
	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlplan"
	"github.com/spf13/pflag"
)

// NewCommand returns a new download monthly command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Download one date per month for a range of months",
		Long: `Download one date per month for a range of months.

Each month from --start through --end is represented by its last business day,
except the current month, which uses the previous business day. Both currency
spreadsheets are downloaded for every month, replacing existing files.`,
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
	// Start is the first month (YYYY-MM).
	Start string
	// End is the last month (YYYY-MM).
	End string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	sbsctlcmd.BindDirFlag(flagSet, &f.Dir)
	sbsctlcmd.BindRangeFlags(flagSet, &f.Start, &f.End)
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	if flags.Start == "" || flags.End == "" {
		return appcmd.NewInvalidArgumentErrorf("--%s and --%s are required", sbsctlcmd.StartFlagName, sbsctlcmd.EndFlagName)
	}
	start, end, err := sbsctlcmd.ParseRange(flags.Start, flags.End)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	config, err := sbsctlcmd.ReadConfig(flags.Dir)
	if err != nil {
		return err
	}
	result, err := sbsctlcmd.NewDownloader(container, config).Download(
		ctx,
		&sbsctlplan.Request{
			Mode:        sbsctlplan.ModeMonthly,
			Start:       start,
			End:         end,
			BaseDirPath: config.DirPath,
		},
	)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(container.Stdout(), result.Message())
	return err
}
