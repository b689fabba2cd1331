// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sbsctlcmd provides shared wiring for sbsctl commands that need
// the download pipeline (reading config, constructing the browser form driver).
package sbsctlcmd

import (
	"context"

	"buf.build/go/app/appext"
	"github.com/bufdev/sbsctl/internal/pkg/sbsform"
	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlcalendar"
	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlconfig"
	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctldownload"
	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlpath"
	"github.com/bufdev/sbsctl/internal/standard/xos"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

const (
	// DirFlagName is the flag name for the base directory.
	DirFlagName = "dir"
	// StartFlagName is the flag name for the first month of a monthly range.
	StartFlagName = "start"
	// EndFlagName is the flag name for the last month of a monthly range.
	EndFlagName = "end"
)

// BindDirFlag binds the --dir flag.
func BindDirFlag(flagSet *pflag.FlagSet, dir *string) {
	flagSet.StringVar(dir, DirFlagName, ".", "The sbsctl directory containing sbsctl.yaml and the downloaded spreadsheets")
}

// BindRangeFlags binds the --start and --end flags.
func BindRangeFlags(flagSet *pflag.FlagSet, start *string, end *string) {
	flagSet.StringVar(start, StartFlagName, "", "The first month to download, inclusive (YYYY-MM)")
	flagSet.StringVar(end, EndFlagName, "", "The last month to download, inclusive (YYYY-MM)")
}

// ParseRange parses the --start and --end flag values.
func ParseRange(start string, end string) (sbsctlcalendar.YearMonth, sbsctlcalendar.YearMonth, error) {
	startYearMonth, err := sbsctlcalendar.ParseYearMonth(start)
	if err != nil {
		return sbsctlcalendar.YearMonth{}, sbsctlcalendar.YearMonth{}, err
	}
	endYearMonth, err := sbsctlcalendar.ParseYearMonth(end)
	if err != nil {
		return sbsctlcalendar.YearMonth{}, sbsctlcalendar.YearMonth{}, err
	}
	return startYearMonth, endYearMonth, nil
}

// ReadConfig resolves the base directory and reads its configuration file.
func ReadConfig(dir string) (*sbsctlconfig.Config, error) {
	dirPath, err := xos.AbsDir(dir)
	if err != nil {
		return nil, err
	}
	return sbsctlconfig.ReadConfig(dirPath)
}

// NewFormDriver constructs the browser form driver from the config.
func NewFormDriver(container appext.Container, config *sbsctlconfig.Config) *sbsform.Driver {
	return sbsform.NewDriver(
		container.Logger(),
		sbsctlpath.DownloadsDirPath(config.DirPath),
		sbsform.WithExecutablePath(config.BrowserExecutablePath),
		sbsform.WithHeadless(config.BrowserHeadless),
		sbsform.WithNavigationTimeout(config.NavigationTimeout),
		sbsform.WithDownloadTimeout(config.DownloadTimeout),
	)
}

// NewDownloader constructs a Downloader from the appext container and config.
func NewDownloader(container appext.Container, config *sbsctlconfig.Config) sbsctldownload.Downloader {
	return sbsctldownload.NewDownloader(
		container.Logger(),
		afero.NewOsFs(),
		formDriver{driver: NewFormDriver(container, config)},
		config.PortalURL,
		sbsctldownload.WithSubmitSettle(config.SubmitSettle),
		sbsctldownload.WithToggleSettle(config.ToggleSettle),
	)
}

// formDriver adapts *sbsform.Driver to sbsctldownload.FormDriver.
type formDriver struct {
	driver *sbsform.Driver
}

func (f formDriver) Open(ctx context.Context, url string) (sbsctldownload.Session, error) {
	session, err := f.driver.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	return session, nil
}
