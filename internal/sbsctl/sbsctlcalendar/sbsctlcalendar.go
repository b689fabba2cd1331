// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sbsctlcalendar provides the business-day arithmetic that decides
// which dates are fetched from the SBS portal.
//
// A business day is any day that is not a Saturday or Sunday. Public holidays
// are not modeled.
package sbsctlcalendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bufdev/sbsctl/internal/standard/xtime"
)

// IsBusinessDay reports whether the date is neither a Saturday nor a Sunday.
func IsBusinessDay(date xtime.Date) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// PreviousBusinessDay returns yesterday relative to today, moved back to the
// preceding Friday if yesterday falls on a weekend.
func PreviousBusinessDay(today xtime.Date) xtime.Date {
	return shiftBackOffWeekend(today.AddDays(-1))
}

// LastBusinessDayOfMonth returns the last day of the month, moved back to the
// preceding Friday if it falls on a weekend.
func LastBusinessDayOfMonth(year int, month time.Month) xtime.Date {
	// Day 0 of the next month is the last day of this month.
	return shiftBackOffWeekend(xtime.NewDate(year, month+1, 0))
}

// FirstBusinessDayOfMonth returns the first day of the month, moved forward to
// the following Monday if it falls on a weekend.
func FirstBusinessDayOfMonth(year int, month time.Month) xtime.Date {
	date := xtime.NewDate(year, month, 1)
	switch date.Weekday() {
	case time.Saturday:
		return date.AddDays(2)
	case time.Sunday:
		return date.AddDays(1)
	default:
		return date
	}
}

// MonthName returns the English name of the month, as used in directory names.
func MonthName(month time.Month) string {
	return month.String()
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// YearMonthOf returns the YearMonth containing the date.
func YearMonthOf(date xtime.Date) YearMonth {
	return YearMonth{Year: date.Year, Month: date.Month}
}

// ParseYearMonth parses a YYYY-MM string.
func ParseYearMonth(s string) (YearMonth, error) {
	yearString, monthString, ok := strings.Cut(s, "-")
	if !ok || len(yearString) != 4 || len(monthString) != 2 {
		return YearMonth{}, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	year, err := strconv.Atoi(yearString)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid year in %q: %w", s, err)
	}
	month, err := strconv.Atoi(monthString)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month in %q: %w", s, err)
	}
	yearMonth := YearMonth{Year: year, Month: time.Month(month)}
	if !yearMonth.IsValid() {
		return YearMonth{}, fmt.Errorf("invalid month in %q, must be between 01 and 12", s)
	}
	return yearMonth, nil
}

// IsValid reports whether the month is between January and December.
func (y YearMonth) IsValid() bool {
	return y.Month >= time.January && y.Month <= time.December
}

// Next returns the following month, wrapping December into January of the next year.
func (y YearMonth) Next() YearMonth {
	if y.Month == time.December {
		return YearMonth{Year: y.Year + 1, Month: time.January}
	}
	return YearMonth{Year: y.Year, Month: y.Month + 1}
}

// Before reports whether y is earlier than other.
func (y YearMonth) Before(other YearMonth) bool {
	if y.Year != other.Year {
		return y.Year < other.Year
	}
	return y.Month < other.Month
}

// String returns the month in YYYY-MM format.
func (y YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", y.Year, y.Month)
}

func shiftBackOffWeekend(date xtime.Date) xtime.Date {
	switch date.Weekday() {
	case time.Saturday:
		return date.AddDays(-1)
	case time.Sunday:
		return date.AddDays(-2)
	default:
		return date
	}
}
