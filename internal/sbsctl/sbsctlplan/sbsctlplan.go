// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sbsctlplan decides which dates are downloaded in a run, and in what order.
//
// Daily mode fills in every business day of the current month up to the previous
// business day, skipping dates whose artifacts are both on disk. Monthly mode picks
// one representative date per month of a range and always re-downloads it.
package sbsctlplan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlcalendar"
	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlledger"
	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlpath"
	"github.com/bufdev/sbsctl/internal/standard/xtime"
	"github.com/spf13/afero"
)

// Mode selects how the dates of a run are chosen.
type Mode int

const (
	// ModeDaily downloads each missing business day of the current month.
	ModeDaily Mode = iota + 1
	// ModeMonthly downloads one representative date per month of a range.
	ModeMonthly
)

// ParseMode parses "daily" or "monthly".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "daily":
		return ModeDaily, nil
	case "monthly":
		return ModeMonthly, nil
	default:
		return 0, fmt.Errorf("unknown mode %q, must be one of: daily, monthly", s)
	}
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeDaily:
		return "daily"
	case ModeMonthly:
		return "monthly"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Request is the input of a run. It does not change for the duration of the run.
type Request struct {
	// Mode selects daily or monthly planning.
	Mode Mode
	// Start is the first month of the range, inclusive. Monthly mode only.
	Start sbsctlcalendar.YearMonth
	// End is the last month of the range, inclusive. Monthly mode only.
	End sbsctlcalendar.YearMonth
	// BaseDirPath is the root of the artifact tree.
	BaseDirPath string
}

// Validate checks the request, returning a *PlanningError if it cannot be planned.
//
// An End before Start is valid and plans nothing.
func (r *Request) Validate() error {
	if r.BaseDirPath == "" {
		return newPlanningErrorf("base directory is required")
	}
	switch r.Mode {
	case ModeDaily:
		return nil
	case ModeMonthly:
		if !r.Start.IsValid() {
			return newPlanningErrorf("invalid start month %d, must be between 1 and 12", int(r.Start.Month))
		}
		if !r.End.IsValid() {
			return newPlanningErrorf("invalid end month %d, must be between 1 and 12", int(r.End.Month))
		}
		return nil
	default:
		return newPlanningErrorf("unknown mode %v", r.Mode)
	}
}

// WorkItem is one date to download, consumed exactly once by a run.
type WorkItem struct {
	// Mode is the mode the item was planned in. Daily items export only
	// artifacts that are still missing when the item is executed.
	Mode Mode `json:"mode"`
	// Year is the year of the month directory.
	Year int `json:"year"`
	// Month is the month of the month directory.
	Month time.Month `json:"month"`
	// Date is the date set into the portal form.
	Date xtime.Date `json:"date"`
	// DirPath is the month directory the artifacts are saved to.
	DirPath string `json:"dir_path"`
	// Missing is the set of artifacts that were absent at planning time.
	// Monthly items always contain every currency.
	Missing sbsctlledger.CurrencySet `json:"missing"`
}

// WorkItemHeaders returns the table and CSV headers matching WorkItem.Row.
func WorkItemHeaders() []string {
	return []string{"DATE", "MONTH", "MODE", "MISSING", "DIRECTORY"}
}

// Row returns the work item as a table or CSV row.
func (w *WorkItem) Row() []string {
	codes := make([]string, 0, 2)
	for _, currency := range w.Missing.Currencies() {
		codes = append(codes, currency.Code())
	}
	return []string{
		w.Date.String(),
		fmt.Sprintf("%04d-%02d", w.Year, int(w.Month)),
		w.Mode.String(),
		strings.Join(codes, ","),
		w.DirPath,
	}
}

// ArtifactFilePath returns the path the artifact for the currency is saved to.
func (w *WorkItem) ArtifactFilePath(currency sbsctlledger.Currency) string {
	return sbsctlledger.ArtifactFilePath(w.DirPath, currency, w.Date)
}

// PlanningError is returned for requests that cannot be planned.
type PlanningError struct {
	Message string
}

// Error implements error.
func (e *PlanningError) Error() string {
	return e.Message
}

// IsPlanningError reports whether err wraps a *PlanningError.
func IsPlanningError(err error) bool {
	var planningError *PlanningError
	return errors.As(err, &planningError)
}

// Plan returns the ordered work items for the request, relative to today.
//
// Month directories of the planned items are created as a side effect.
func Plan(fs afero.Fs, request *Request, today xtime.Date) ([]*WorkItem, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	switch request.Mode {
	case ModeDaily:
		return planDaily(fs, request.BaseDirPath, today)
	case ModeMonthly:
		return planMonthly(fs, request.BaseDirPath, request.Start, request.End, today)
	default:
		return nil, newPlanningErrorf("unknown mode %v", request.Mode)
	}
}

func planDaily(fs afero.Fs, baseDirPath string, today xtime.Date) ([]*WorkItem, error) {
	limit := sbsctlcalendar.PreviousBusinessDay(today)
	// The previous business day is still in last month: nothing to do until
	// a business day of this month has passed.
	if sbsctlcalendar.YearMonthOf(limit) != sbsctlcalendar.YearMonthOf(today) {
		return nil, nil
	}
	monthDirPath, err := sbsctlpath.EnsureMonthDir(fs, baseDirPath, today.Year, today.Month)
	if err != nil {
		return nil, err
	}
	var workItems []*WorkItem
	for date := sbsctlcalendar.FirstBusinessDayOfMonth(today.Year, today.Month); date.EqualOrBefore(limit); date = date.AddDays(1) {
		if !sbsctlcalendar.IsBusinessDay(date) {
			continue
		}
		missing, err := sbsctlledger.MissingArtifacts(fs, monthDirPath, date)
		if err != nil {
			return nil, err
		}
		if missing.IsEmpty() {
			continue
		}
		workItems = append(workItems, &WorkItem{
			Mode:    ModeDaily,
			Year:    today.Year,
			Month:   today.Month,
			Date:    date,
			DirPath: monthDirPath,
			Missing: missing,
		})
	}
	return workItems, nil
}

func planMonthly(
	fs afero.Fs,
	baseDirPath string,
	start sbsctlcalendar.YearMonth,
	end sbsctlcalendar.YearMonth,
	today xtime.Date,
) ([]*WorkItem, error) {
	current := sbsctlcalendar.YearMonthOf(today)
	var workItems []*WorkItem
	for yearMonth := start; !end.Before(yearMonth); yearMonth = yearMonth.Next() {
		date := sbsctlcalendar.LastBusinessDayOfMonth(yearMonth.Year, yearMonth.Month)
		if yearMonth == current {
			date = sbsctlcalendar.PreviousBusinessDay(today)
		}
		monthDirPath, err := sbsctlpath.EnsureMonthDir(fs, baseDirPath, yearMonth.Year, yearMonth.Month)
		if err != nil {
			return nil, err
		}
		workItems = append(workItems, &WorkItem{
			Mode:    ModeMonthly,
			Year:    yearMonth.Year,
			Month:   yearMonth.Month,
			Date:    date,
			DirPath: monthDirPath,
			Missing: sbsctlledger.NewCurrencySet(sbsctlledger.AllCurrencies...),
		})
	}
	return workItems, nil
}

func newPlanningErrorf(format string, args ...any) *PlanningError {
	return &PlanningError{Message: fmt.Sprintf(format, args...)}
}
