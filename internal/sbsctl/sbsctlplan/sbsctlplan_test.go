// Copyright 2026 Peter Edge
//
// All rights reserved.

package sbsctlplan

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlcalendar"
	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlledger"
	"github.com/bufdev/sbsctl/internal/standard/xtime"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testBaseDirPath = "/data"

func TestPlanDaily(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	monthDirPath := filepath.Join(testBaseDirPath, "2025", "03_March")
	// March 3 is complete, March 4 only has its domestic artifact.
	seedArtifact(t, fs, monthDirPath, "MN_2025-03-03.xlsx")
	seedArtifact(t, fs, monthDirPath, "ME_2025-03-03.xlsx")
	seedArtifact(t, fs, monthDirPath, "MN_2025-03-04.xlsx")

	// Thursday: the previous business day is Wednesday March 5.
	workItems, err := Plan(fs, &Request{Mode: ModeDaily, BaseDirPath: testBaseDirPath}, xtime.Date{Year: 2025, Month: 3, Day: 6})
	require.NoError(t, err)
	require.Equal(
		t,
		[]xtime.Date{
			{Year: 2025, Month: 3, Day: 4},
			{Year: 2025, Month: 3, Day: 5},
		},
		workItemDates(workItems),
	)
	require.Equal(t, []sbsctlledger.Currency{sbsctlledger.CurrencyForeign}, workItems[0].Missing.Currencies())
	require.Equal(t, 2, workItems[1].Missing.Len())
	for _, workItem := range workItems {
		require.Equal(t, ModeDaily, workItem.Mode)
		require.Equal(t, 2025, workItem.Year)
		require.Equal(t, time.March, workItem.Month)
		require.Equal(t, monthDirPath, workItem.DirPath)
	}
	require.Equal(t, filepath.Join(monthDirPath, "ME_2025-03-04.xlsx"), workItems[0].ArtifactFilePath(sbsctlledger.CurrencyForeign))
}

func TestPlanDailySkipsWeekends(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	// Tuesday March 11: previous business day is Monday March 10.
	workItems, err := Plan(fs, &Request{Mode: ModeDaily, BaseDirPath: testBaseDirPath}, xtime.Date{Year: 2025, Month: 3, Day: 11})
	require.NoError(t, err)
	dates := workItemDates(workItems)
	require.Equal(t, xtime.Date{Year: 2025, Month: 3, Day: 3}, dates[0])
	require.Equal(t, xtime.Date{Year: 2025, Month: 3, Day: 10}, dates[len(dates)-1])
	// March 3-7 and March 10.
	require.Len(t, dates, 6)
	for i, date := range dates {
		require.True(t, sbsctlcalendar.IsBusinessDay(date), "%v", date)
		if i > 0 {
			require.True(t, dates[i-1].Before(date))
		}
	}
}

func TestPlanDailyIdempotent(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	request := &Request{Mode: ModeDaily, BaseDirPath: testBaseDirPath}
	today := xtime.Date{Year: 2025, Month: 3, Day: 6}
	workItems, err := Plan(fs, request, today)
	require.NoError(t, err)
	require.Len(t, workItems, 3)
	// Simulate a successful run.
	for _, workItem := range workItems {
		for _, currency := range workItem.Missing.Currencies() {
			require.NoError(t, afero.WriteFile(fs, workItem.ArtifactFilePath(currency), []byte("xlsx"), 0o644))
		}
	}
	workItems, err = Plan(fs, request, today)
	require.NoError(t, err)
	require.Empty(t, workItems)
}

func TestPlanDailyMonthRollover(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	// Monday March 3: the previous business day is Friday February 28.
	workItems, err := Plan(fs, &Request{Mode: ModeDaily, BaseDirPath: testBaseDirPath}, xtime.Date{Year: 2025, Month: 3, Day: 3})
	require.NoError(t, err)
	require.Empty(t, workItems)
	// Nothing is created when there is nothing to do.
	exists, err := afero.DirExists(fs, filepath.Join(testBaseDirPath, "2025"))
	require.NoError(t, err)
	require.False(t, exists)
}

func TestPlanMonthly(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	request := &Request{
		Mode:        ModeMonthly,
		Start:       sbsctlcalendar.YearMonth{Year: 2025, Month: time.January},
		End:         sbsctlcalendar.YearMonth{Year: 2025, Month: time.March},
		BaseDirPath: testBaseDirPath,
	}
	// March is the current month and uses the previous business day.
	workItems, err := Plan(fs, request, xtime.Date{Year: 2025, Month: 3, Day: 6})
	require.NoError(t, err)
	require.Equal(
		t,
		[]xtime.Date{
			{Year: 2025, Month: 1, Day: 31},
			{Year: 2025, Month: 2, Day: 28},
			{Year: 2025, Month: 3, Day: 5},
		},
		workItemDates(workItems),
	)
	for i, workItem := range workItems {
		require.Equal(t, ModeMonthly, workItem.Mode)
		require.Equal(t, time.Month(i+1), workItem.Month)
		require.Equal(t, 2, workItem.Missing.Len())
		exists, err := afero.DirExists(fs, workItem.DirPath)
		require.NoError(t, err)
		require.True(t, exists)
	}
	require.Equal(t, filepath.Join(testBaseDirPath, "2025", "02_February"), workItems[1].DirPath)

	// Outside the current month every month uses its last business day.
	workItems, err = Plan(fs, request, xtime.Date{Year: 2025, Month: 6, Day: 10})
	require.NoError(t, err)
	require.Equal(t, xtime.Date{Year: 2025, Month: 3, Day: 31}, workItems[2].Date)
}

func TestPlanMonthlyIgnoresLedger(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	monthDirPath := filepath.Join(testBaseDirPath, "2025", "01_January")
	seedArtifact(t, fs, monthDirPath, "MN_2025-01-31.xlsx")
	seedArtifact(t, fs, monthDirPath, "ME_2025-01-31.xlsx")
	workItems, err := Plan(
		fs,
		&Request{
			Mode:        ModeMonthly,
			Start:       sbsctlcalendar.YearMonth{Year: 2025, Month: time.January},
			End:         sbsctlcalendar.YearMonth{Year: 2025, Month: time.January},
			BaseDirPath: testBaseDirPath,
		},
		xtime.Date{Year: 2025, Month: 6, Day: 10},
	)
	require.NoError(t, err)
	require.Len(t, workItems, 1)
	require.Equal(t, 2, workItems[0].Missing.Len())
}

func TestPlanMonthlyYearWrap(t *testing.T) {
	t.Parallel()
	workItems, err := Plan(
		afero.NewMemMapFs(),
		&Request{
			Mode:        ModeMonthly,
			Start:       sbsctlcalendar.YearMonth{Year: 2024, Month: time.November},
			End:         sbsctlcalendar.YearMonth{Year: 2025, Month: time.February},
			BaseDirPath: testBaseDirPath,
		},
		xtime.Date{Year: 2025, Month: 6, Day: 10},
	)
	require.NoError(t, err)
	require.Equal(
		t,
		[]xtime.Date{
			{Year: 2024, Month: 11, Day: 29},
			{Year: 2024, Month: 12, Day: 31},
			{Year: 2025, Month: 1, Day: 31},
			{Year: 2025, Month: 2, Day: 28},
		},
		workItemDates(workItems),
	)
}

func TestPlanMonthlyEndBeforeStart(t *testing.T) {
	t.Parallel()
	workItems, err := Plan(
		afero.NewMemMapFs(),
		&Request{
			Mode:        ModeMonthly,
			Start:       sbsctlcalendar.YearMonth{Year: 2025, Month: time.March},
			End:         sbsctlcalendar.YearMonth{Year: 2025, Month: time.January},
			BaseDirPath: testBaseDirPath,
		},
		xtime.Date{Year: 2025, Month: 6, Day: 10},
	)
	require.NoError(t, err)
	require.Empty(t, workItems)
}

func TestPlanInvalidRequest(t *testing.T) {
	t.Parallel()
	today := xtime.Date{Year: 2025, Month: 6, Day: 10}
	_, err := Plan(
		afero.NewMemMapFs(),
		&Request{
			Mode:        ModeMonthly,
			Start:       sbsctlcalendar.YearMonth{Year: 2025, Month: 13},
			End:         sbsctlcalendar.YearMonth{Year: 2025, Month: time.January},
			BaseDirPath: testBaseDirPath,
		},
		today,
	)
	require.Error(t, err)
	require.True(t, IsPlanningError(err))
	_, err = Plan(afero.NewMemMapFs(), &Request{Mode: ModeDaily}, today)
	require.True(t, IsPlanningError(err))
}

func TestParseMode(t *testing.T) {
	t.Parallel()
	mode, err := ParseMode("Daily")
	require.NoError(t, err)
	require.Equal(t, ModeDaily, mode)
	mode, err = ParseMode("monthly")
	require.NoError(t, err)
	require.Equal(t, ModeMonthly, mode)
	_, err = ParseMode("weekly")
	require.Error(t, err)
}

func seedArtifact(t *testing.T, fs afero.Fs, monthDirPath string, fileName string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(monthDirPath, fileName), []byte("xlsx"), 0o644))
}

func workItemDates(workItems []*WorkItem) []xtime.Date {
	dates := make([]xtime.Date, 0, len(workItems))
	for _, workItem := range workItems {
		dates = append(dates, workItem.Date)
	}
	return dates
}

func TestWorkItemRow(t *testing.T) {
	t.Parallel()
	workItem := &WorkItem{
		Mode:    ModeDaily,
		Year:    2025,
		Month:   time.March,
		Date:    xtime.Date{Year: 2025, Month: 3, Day: 4},
		DirPath: "/data/2025/03_March",
		Missing: sbsctlledger.NewCurrencySet(sbsctlledger.CurrencyForeign),
	}
	require.Equal(t, []string{"2025-03-04", "2025-03", "daily", "ME", "/data/2025/03_March"}, workItem.Row())
	require.Len(t, WorkItemHeaders(), len(workItem.Row()))
	data, err := json.Marshal(workItem)
	require.NoError(t, err)
	require.JSONEq(
		t,
		`{"mode":"daily","year":2025,"month":3,"date":"2025-03-04","dir_path":"/data/2025/03_March","missing":["ME"]}`,
		string(data),
	)
}
