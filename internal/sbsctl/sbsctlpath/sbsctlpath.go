// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sbsctlpath derives paths from the sbsctl base directory.
// All directory layout is defined here so callers don't duplicate
// path construction logic.
//
// The base directory (--dir flag) contains:
//
//	sbsctl.yaml                       Config file
//	.downloads/                       Staging area for in-flight browser downloads
//	<YYYY>/<MM>_<MonthName>/          One directory per month
//	  MN_<YYYY-MM-DD>.xlsx            Domestic-currency rates for a date
//	  ME_<YYYY-MM-DD>.xlsx            Foreign-currency rates for a date
//
// The presence of an artifact file is the only record that a date was downloaded,
// so the directory and file name formats must stay stable across releases.
package sbsctlpath

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlcalendar"
	"github.com/bufdev/sbsctl/internal/standard/xtime"
	"github.com/spf13/afero"
)

// ConfigFileName is the well-known config file name within the base directory.
const ConfigFileName = "sbsctl.yaml"

// ArtifactFileExt is the extension of downloaded artifacts.
const ArtifactFileExt = ".xlsx"

// downloadsDirName is the staging directory name within the base directory.
const downloadsDirName = ".downloads"

// ConfigFilePath returns the path to the config file within the base directory.
func ConfigFilePath(dirPath string) string {
	return filepath.Join(dirPath, ConfigFileName)
}

// DownloadsDirPath returns the staging directory the browser saves downloads into
// before they are moved to their artifact path.
func DownloadsDirPath(dirPath string) string {
	return filepath.Join(dirPath, downloadsDirName)
}

// IsDownloadsDirName reports whether the name is the staging directory name.
func IsDownloadsDirName(name string) bool {
	return name == downloadsDirName
}

// MonthDirPath returns the directory for a month, e.g. <dir>/2025/02_February.
func MonthDirPath(dirPath string, year int, month time.Month) string {
	return filepath.Join(
		dirPath,
		strconv.Itoa(year),
		fmt.Sprintf("%02d_%s", int(month), sbsctlcalendar.MonthName(month)),
	)
}

// EnsureMonthDir creates the directory for a month and any missing parents,
// and returns its path. It is not an error if the directory already exists.
func EnsureMonthDir(fs afero.Fs, dirPath string, year int, month time.Month) (string, error) {
	monthDirPath := MonthDirPath(dirPath, year, month)
	if err := fs.MkdirAll(monthDirPath, 0o755); err != nil {
		return "", fmt.Errorf("creating month directory %s: %w", monthDirPath, err)
	}
	return monthDirPath, nil
}

// ArtifactFileName returns the file name of an artifact, e.g. MN_2025-02-28.xlsx.
func ArtifactFileName(code string, date xtime.Date) string {
	return code + "_" + date.String() + ArtifactFileExt
}

// ArtifactFilePath returns the path of an artifact within a month directory.
func ArtifactFilePath(monthDirPath string, code string, date xtime.Date) string {
	return filepath.Join(monthDirPath, ArtifactFileName(code, date))
}
