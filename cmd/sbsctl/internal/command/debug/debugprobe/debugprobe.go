// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package debugprobe implements the "debug probe" command for checking the portal form.
package debugprobe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/sbsctl/cmd/sbsctl/internal/sbsctlcmd"
	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlcalendar"
	"github.com/bufdev/sbsctl/internal/standard/xtime"
	"github.com/spf13/pflag"
)

// dateFlagName is the flag name for the date to probe.
const dateFlagName = "date"

// NewCommand returns a new debug probe command for checking the portal form.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Probe the SBS portal with a single date",
		Long: `Probe the SBS portal with a single date.

Opens the portal, sets the given --date (YYYY-MM-DD, defaults to the previous
business day) and submits it. Nothing is exported. Useful for checking the
configured browser and the form selectors after a portal change.`,
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
	// Dir is the sbsctl directory containing sbsctl.yaml.
	Dir string
	// Date is the date to submit (YYYY-MM-DD).
	Date string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	sbsctlcmd.BindDirFlag(flagSet, &f.Dir)
	flagSet.StringVar(
		&f.Date,
		dateFlagName,
		"",
		"Date to submit (YYYY-MM-DD, defaults to the previous business day)",
	)
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	date := sbsctlcalendar.PreviousBusinessDay(xtime.TimeToDate(time.Now()))
	if flags.Date != "" {
		var err error
		date, err = xtime.ParseDate(flags.Date)
		if err != nil {
			return appcmd.NewInvalidArgumentErrorf("invalid --%s %q, expected YYYY-MM-DD format: %v", dateFlagName, flags.Date, err)
		}
	}
	config, err := sbsctlcmd.ReadConfig(flags.Dir)
	if err != nil {
		return err
	}
	logger := container.Logger()
	logger.Info("probing portal", "url", config.PortalURL, "date", date.String())
	session, err := sbsctlcmd.NewFormDriver(container, config).Open(ctx, config.PortalURL)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	defer func() {
		retErr = errors.Join(retErr, session.Close())
	}()
	if err := session.SetDate(date.Format("02/01/2006")); err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	if err := session.Submit(); err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	if err := sleep(ctx, config.SubmitSettle); err != nil {
		return err
	}
	_, err = fmt.Fprintf(container.Stdout(), "ok: submitted %s to %s\n", date.String(), config.PortalURL)
	return err
}

func sleep(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
