// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sbsform drives the SBS interest-rate portal form in a Chromium browser
// over the DevTools protocol.
//
// The portal is an ASP.NET page: a date input, a button that exports the current
// view as an xlsx spreadsheet, and a link that switches the view to foreign-currency
// rates. Exports are browser downloads, saved under their download GUID in a
// staging directory.
package sbsform

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

const (
	// dateInputSelector matches the rates date picker input.
	dateInputSelector = "input[id*='dateInput']"
	// exportButtonSelector matches the export-to-spreadsheet button.
	exportButtonSelector = "#ctl00_cphContent_btnExportar"
	// foreignViewSelector matches the link switching to foreign-currency rates.
	foreignViewSelector = "#ctl00_cphContent_lbtnMex"

	defaultNavigationTimeout = 60 * time.Second
	defaultDownloadTimeout   = 60 * time.Second
)

// DriverOption is an option for a new Driver.
type DriverOption func(*Driver)

// WithExecutablePath sets the browser executable. By default Chrome or Chromium
// is located on the system.
func WithExecutablePath(executablePath string) DriverOption {
	return func(driver *Driver) {
		driver.executablePath = executablePath
	}
}

// WithHeadless runs the browser without a window.
func WithHeadless(headless bool) DriverOption {
	return func(driver *Driver) {
		driver.headless = headless
	}
}

// WithNavigationTimeout bounds loading the page and each form interaction.
func WithNavigationTimeout(navigationTimeout time.Duration) DriverOption {
	return func(driver *Driver) {
		if navigationTimeout > 0 {
			driver.navigationTimeout = navigationTimeout
		}
	}
}

// WithDownloadTimeout bounds waiting for a single download to complete.
func WithDownloadTimeout(downloadTimeout time.Duration) DriverOption {
	return func(driver *Driver) {
		if downloadTimeout > 0 {
			driver.downloadTimeout = downloadTimeout
		}
	}
}

// Driver launches browser sessions against the portal.
type Driver struct {
	logger            *slog.Logger
	downloadDirPath   string
	executablePath    string
	headless          bool
	navigationTimeout time.Duration
	downloadTimeout   time.Duration
}

// NewDriver returns a new Driver saving downloads into downloadDirPath.
func NewDriver(logger *slog.Logger, downloadDirPath string, options ...DriverOption) *Driver {
	driver := &Driver{
		logger:            logger,
		downloadDirPath:   downloadDirPath,
		navigationTimeout: defaultNavigationTimeout,
		downloadTimeout:   defaultDownloadTimeout,
	}
	for _, option := range options {
		option(driver)
	}
	return driver
}

// Open launches the browser, loads the page at url and waits for the date input.
//
// The session lives until Close is called or ctx is canceled.
func (d *Driver) Open(ctx context.Context, url string) (*Session, error) {
	if err := os.MkdirAll(d.downloadDirPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}
	allocatorOptions := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.headless),
	)
	if d.executablePath != "" {
		allocatorOptions = append(allocatorOptions, chromedp.ExecPath(d.executablePath))
	}
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(ctx, allocatorOptions...)
	browserCtx, browserCancel := chromedp.NewContext(
		allocatorCtx,
		chromedp.WithLogf(d.logf),
		chromedp.WithErrorf(d.logf),
	)
	session := &Session{
		logger:            d.logger,
		ctx:               browserCtx,
		browserCancel:     browserCancel,
		allocatorCancel:   allocatorCancel,
		downloadDirPath:   d.downloadDirPath,
		navigationTimeout: d.navigationTimeout,
		downloadTimeout:   d.downloadTimeout,
		downloads:         make(chan downloadEvent, 8),
	}
	chromedp.ListenTarget(browserCtx, session.onEvent)
	// The first Run starts the browser.
	if err := chromedp.Run(
		browserCtx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllowAndName).
			WithDownloadPath(d.downloadDirPath).
			WithEventsEnabled(true),
	); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	d.logger.Debug("browser started", "download_dir", d.downloadDirPath)
	if err := session.run(chromedp.Navigate(url), chromedp.WaitVisible(dateInputSelector, chromedp.ByQuery)); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("loading %s: %w", url, err)
	}
	d.logger.Info("portal loaded", "url", url)
	return session, nil
}

func (d *Driver) logf(format string, args ...any) {
	d.logger.Debug(fmt.Sprintf(format, args...), "source", "chromedp")
}

// Session is an open browser page holding the portal form.
type Session struct {
	logger            *slog.Logger
	ctx               context.Context
	browserCancel     context.CancelFunc
	allocatorCancel   context.CancelFunc
	downloadDirPath   string
	navigationTimeout time.Duration
	downloadTimeout   time.Duration
	downloads         chan downloadEvent
}

// SetDate replaces the contents of the date input with text (DD/MM/YYYY).
func (s *Session) SetDate(text string) error {
	return s.run(
		chromedp.Clear(dateInputSelector, chromedp.ByQuery),
		chromedp.SendKeys(dateInputSelector, text, chromedp.ByQuery),
	)
}

// Submit presses Enter in the date input.
func (s *Session) Submit() error {
	return s.run(chromedp.SendKeys(dateInputSelector, kb.Enter, chromedp.ByQuery))
}

// ToggleForeignView clicks the foreign-currency link.
func (s *Session) ToggleForeignView() error {
	return s.run(chromedp.Click(foreignViewSelector, chromedp.ByQuery))
}

// Export clicks the export button.
func (s *Session) Export() error {
	return s.run(chromedp.Click(exportButtonSelector, chromedp.ByQuery))
}

// AwaitDownload runs action and waits for the download it starts to complete.
// It returns the path of the downloaded file in the download directory.
func (s *Session) AwaitDownload(action func() error) (string, error) {
	s.drainDownloads()
	if err := action(); err != nil {
		return "", err
	}
	timer := time.NewTimer(s.downloadTimeout)
	defer timer.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return "", s.ctx.Err()
		case <-timer.C:
			return "", fmt.Errorf("download did not complete within %v", s.downloadTimeout)
		case event := <-s.downloads:
			switch event.state {
			case browser.DownloadProgressStateCompleted:
				filePath := filepath.Join(s.downloadDirPath, event.guid)
				s.logger.Debug("download completed", "path", filePath)
				return filePath, nil
			case browser.DownloadProgressStateCanceled:
				return "", fmt.Errorf("download %s was canceled", event.guid)
			}
		}
	}
}

// Close closes the browser.
func (s *Session) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.browserCancel()
	s.allocatorCancel()
	return err
}

// run runs the actions, bounded by the navigation timeout.
func (s *Session) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.navigationTimeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (s *Session) onEvent(event any) {
	progress, ok := event.(*browser.EventDownloadProgress)
	if !ok {
		return
	}
	switch progress.State {
	case browser.DownloadProgressStateCompleted, browser.DownloadProgressStateCanceled:
		// Listeners must not block the event loop.
		select {
		case s.downloads <- downloadEvent{guid: progress.GUID, state: progress.State}:
		default:
			s.logger.Warn("dropped download event", "guid", progress.GUID)
		}
	}
}

// drainDownloads discards events of downloads that finished before the next
// action, so they are not mistaken for its download.
func (s *Session) drainDownloads() {
	for {
		select {
		case <-s.downloads:
		default:
			return
		}
	}
}

type downloadEvent struct {
	guid  string
	state browser.DownloadProgressState
}
