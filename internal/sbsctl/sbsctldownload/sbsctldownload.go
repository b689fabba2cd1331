// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sbsctldownload provides the download orchestrator for SBS rate spreadsheets.
package sbsctldownload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlledger"
	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlplan"
	"github.com/bufdev/sbsctl/internal/standard/xtime"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// formDateLayout is the date format the portal form accepts (DD/MM/YYYY).
const formDateLayout = "02/01/2006"

// FormDriver opens sessions against the portal form.
type FormDriver interface {
	// Open starts a browser session on the page at url.
	//
	// The returned Session is bound to ctx.
	Open(ctx context.Context, url string) (Session, error)
}

// Session is a single page holding the portal form.
//
// The form holds one date and one currency view at a time, so a Session
// must only be used by one run, one call at a time.
type Session interface {
	// SetDate writes the date, formatted as DD/MM/YYYY, into the date input.
	SetDate(text string) error
	// Submit submits the date input.
	Submit() error
	// ToggleForeignView switches the form to the foreign-currency view.
	ToggleForeignView() error
	// Export triggers the spreadsheet export of the current view.
	Export() error
	// AwaitDownload runs action and waits for the download it triggers to complete,
	// returning the path of the downloaded file.
	AwaitDownload(action func() error) (string, error)
	// Close ends the session and releases the browser.
	Close() error
}

// Downloader is the interface for running a download request.
type Downloader interface {
	// Download plans the request and executes every work item in order.
	//
	// The first error aborts the run.
	Download(ctx context.Context, request *sbsctlplan.Request) (*Result, error)
}

// Result summarizes a successful run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string
	// WorkItemCount is the number of dates executed.
	WorkItemCount int
	// ArtifactCount is the number of files saved.
	ArtifactCount int
}

// Message returns a human-readable confirmation of the run.
func (r *Result) Message() string {
	if r.WorkItemCount == 0 {
		return "nothing to download"
	}
	return fmt.Sprintf("downloaded %d file(s) for %d date(s)", r.ArtifactCount, r.WorkItemCount)
}

// Option is an option for a new Downloader.
type Option func(*downloader)

// WithSubmitSettle sets the wait after submitting a date.
func WithSubmitSettle(submitSettle time.Duration) Option {
	return func(downloader *downloader) {
		downloader.submitSettle = submitSettle
	}
}

// WithToggleSettle sets the wait after switching to the foreign-currency view.
func WithToggleSettle(toggleSettle time.Duration) Option {
	return func(downloader *downloader) {
		downloader.toggleSettle = toggleSettle
	}
}

// WithNow sets the clock used to determine today.
func WithNow(now func() time.Time) Option {
	return func(downloader *downloader) {
		downloader.now = now
	}
}

// NewDownloader creates a new Downloader.
//
// All artifact paths and directories are accessed through fs.
func NewDownloader(
	logger *slog.Logger,
	fs afero.Fs,
	formDriver FormDriver,
	portalURL string,
	options ...Option,
) Downloader {
	downloader := &downloader{
		logger:     logger,
		fs:         fs,
		formDriver: formDriver,
		portalURL:  portalURL,
		now:        time.Now,
	}
	for _, option := range options {
		option(downloader)
	}
	return downloader
}

type downloader struct {
	logger       *slog.Logger
	fs           afero.Fs
	formDriver   FormDriver
	portalURL    string
	submitSettle time.Duration
	toggleSettle time.Duration
	now          func() time.Time
}

func (d *downloader) Download(ctx context.Context, request *sbsctlplan.Request) (_ *Result, retErr error) {
	result := &Result{RunID: uuid.NewString()}
	logger := d.logger.With("run_id", result.RunID, "mode", request.Mode.String())

	// Planning.
	today := xtime.TimeToDate(d.now())
	workItems, err := sbsctlplan.Plan(d.fs, request, today)
	if err != nil {
		if sbsctlplan.IsPlanningError(err) {
			return nil, err
		}
		return nil, &FilesystemError{Op: "planning", Err: err}
	}
	if len(workItems) == 0 {
		logger.Info("nothing to download", "today", today.String())
		return result, nil
	}
	logger.Info("download planned", "work_items", len(workItems), "first", workItems[0].Date.String(), "last", workItems[len(workItems)-1].Date.String())

	// Executing.
	session, err := d.formDriver.Open(ctx, d.portalURL)
	if err != nil {
		return nil, &DriverError{Op: "opening portal", Err: err}
	}
	defer func() {
		if err := session.Close(); err != nil {
			retErr = errors.Join(retErr, &DriverError{Op: "closing browser", Err: err})
		}
	}()
	for i, workItem := range workItems {
		logger.Info(
			"downloading",
			"item", i+1,
			"of", len(workItems),
			"month", fmt.Sprintf("%04d-%02d", workItem.Year, int(workItem.Month)),
			"date", workItem.Date.String(),
		)
		artifactCount, err := d.executeWorkItem(ctx, logger, session, workItem)
		if err != nil {
			return nil, err
		}
		result.WorkItemCount++
		result.ArtifactCount += artifactCount
	}
	logger.Info("download complete", "work_items", result.WorkItemCount, "artifacts", result.ArtifactCount)
	return result, nil
}

// executeWorkItem drives the form through one date and returns the number of saved artifacts.
func (d *downloader) executeWorkItem(
	ctx context.Context,
	logger *slog.Logger,
	session Session,
	workItem *sbsctlplan.WorkItem,
) (int, error) {
	if err := session.SetDate(workItem.Date.Format(formDateLayout)); err != nil {
		return 0, &DriverError{Op: "setting date " + workItem.Date.String(), Err: err}
	}
	if err := session.Submit(); err != nil {
		return 0, &DriverError{Op: "submitting date " + workItem.Date.String(), Err: err}
	}
	if err := d.settle(ctx, d.submitSettle); err != nil {
		return 0, err
	}
	var artifactCount int
	saved, err := d.exportArtifact(logger, session, workItem, sbsctlledger.CurrencyDomestic)
	if err != nil {
		return 0, err
	}
	if saved {
		artifactCount++
	}
	// The view is switched even when the foreign artifact already exists.
	if err := session.ToggleForeignView(); err != nil {
		return 0, &DriverError{Op: "switching to foreign currency", Err: err}
	}
	if err := d.settle(ctx, d.toggleSettle); err != nil {
		return 0, err
	}
	saved, err = d.exportArtifact(logger, session, workItem, sbsctlledger.CurrencyForeign)
	if err != nil {
		return 0, err
	}
	if saved {
		artifactCount++
	}
	return artifactCount, nil
}

// exportArtifact exports the current view and saves it as the artifact for the currency.
//
// In daily mode the export is skipped if the artifact exists at execution time.
// In monthly mode an existing artifact is overwritten.
func (d *downloader) exportArtifact(
	logger *slog.Logger,
	session Session,
	workItem *sbsctlplan.WorkItem,
	currency sbsctlledger.Currency,
) (bool, error) {
	artifactFilePath := workItem.ArtifactFilePath(currency)
	if workItem.Mode == sbsctlplan.ModeDaily {
		exists, err := sbsctlledger.ArtifactExists(d.fs, workItem.DirPath, currency, workItem.Date)
		if err != nil {
			return false, &FilesystemError{Op: "checking artifact", Err: err}
		}
		if exists {
			logger.Debug("artifact exists, skipping export", "path", artifactFilePath)
			return false, nil
		}
	}
	downloadedFilePath, err := session.AwaitDownload(session.Export)
	if err != nil {
		return false, &DriverError{Op: fmt.Sprintf("exporting %s %s", currency.Code(), workItem.Date.String()), Err: err}
	}
	if err := d.saveArtifact(downloadedFilePath, artifactFilePath); err != nil {
		return false, err
	}
	logger.Info("artifact saved", "currency", currency.String(), "path", artifactFilePath)
	return true, nil
}

// saveArtifact moves the downloaded file to the artifact path, replacing any existing file.
func (d *downloader) saveArtifact(downloadedFilePath string, artifactFilePath string) error {
	if err := d.fs.Remove(artifactFilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &FilesystemError{Op: "replacing " + artifactFilePath, Err: err}
	}
	if err := d.fs.Rename(downloadedFilePath, artifactFilePath); err != nil {
		return &FilesystemError{Op: "saving " + artifactFilePath, Err: err}
	}
	return nil
}

// settle blocks for the duration to let the portal refresh after an interaction.
func (d *downloader) settle(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
