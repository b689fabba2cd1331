// Copyright 2026 Peter Edge
//
// All rights reserved.

package sbsform

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/stretchr/testify/require"
)

func TestAwaitDownloadCompleted(t *testing.T) {
	t.Parallel()
	session := newTestSession(t, time.Second)
	// A download that finished before the action must not be returned.
	session.onEvent(&browser.EventDownloadProgress{GUID: "stale", State: browser.DownloadProgressStateCompleted})
	filePath, err := session.AwaitDownload(func() error {
		session.onEvent(&browser.EventDownloadWillBegin{GUID: "fresh", SuggestedFilename: "export.xlsx"})
		session.onEvent(&browser.EventDownloadProgress{GUID: "fresh", State: browser.DownloadProgressStateInProgress})
		session.onEvent(&browser.EventDownloadProgress{GUID: "fresh", State: browser.DownloadProgressStateCompleted})
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(session.downloadDirPath, "fresh"), filePath)
}

func TestAwaitDownloadCanceled(t *testing.T) {
	t.Parallel()
	session := newTestSession(t, time.Second)
	_, err := session.AwaitDownload(func() error {
		session.onEvent(&browser.EventDownloadProgress{GUID: "guid", State: browser.DownloadProgressStateCanceled})
		return nil
	})
	require.ErrorContains(t, err, "canceled")
}

func TestAwaitDownloadTimeout(t *testing.T) {
	t.Parallel()
	session := newTestSession(t, 10*time.Millisecond)
	_, err := session.AwaitDownload(func() error { return nil })
	require.ErrorContains(t, err, "did not complete")
}

func TestAwaitDownloadActionError(t *testing.T) {
	t.Parallel()
	session := newTestSession(t, time.Second)
	actionErr := errors.New("element not found")
	_, err := session.AwaitDownload(func() error { return actionErr })
	require.ErrorIs(t, err, actionErr)
}

func TestNewDriverOptions(t *testing.T) {
	t.Parallel()
	driver := NewDriver(
		slog.New(slog.DiscardHandler),
		"/tmp/downloads",
		WithExecutablePath("/usr/bin/chromium"),
		WithHeadless(true),
		WithNavigationTimeout(0),
		WithDownloadTimeout(time.Minute*2),
	)
	require.Equal(t, "/usr/bin/chromium", driver.executablePath)
	require.True(t, driver.headless)
	// Zero keeps the default.
	require.Equal(t, defaultNavigationTimeout, driver.navigationTimeout)
	require.Equal(t, 2*time.Minute, driver.downloadTimeout)
}

func newTestSession(t *testing.T, downloadTimeout time.Duration) *Session {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &Session{
		logger:          slog.New(slog.DiscardHandler),
		ctx:             ctx,
		downloadDirPath: t.TempDir(),
		downloadTimeout: downloadTimeout,
		downloads:       make(chan downloadEvent, 8),
	}
}
