// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package downloaddaily implements the "download daily" command.
package downloaddaily

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/sbsctl/cmd/sbsctl/internal/sbsctlcmd"
	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlplan"
	"github.com/spf13/pflag"
)

// NewCommand returns a new download daily command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Download every missing business day of the current month",
		Long: `Download every missing business day of the current month.

Walks the business days from the first of the month through the previous
business day, and downloads the domestic (MN) and foreign (ME) currency
spreadsheets that are not yet in the month directory. Dates with both files
present are skipped, so the command can be re-run after a failure.

Until a business day of the current month has passed, there is nothing to do.`,
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
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	sbsctlcmd.BindDirFlag(flagSet, &f.Dir)
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	config, err := sbsctlcmd.ReadConfig(flags.Dir)
	if err != nil {
		return err
	}
	result, err := sbsctlcmd.NewDownloader(container, config).Download(
		ctx,
		&sbsctlplan.Request{
			Mode:        sbsctlplan.ModeDaily,
			BaseDirPath: config.DirPath,
		},
	)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(container.Stdout(), result.Message())
	return err
}
