// Copyright 2026 Peter Edge
//
// All rights reserved.

package sbsctldownload

import "errors"

// DriverError is returned when an interaction with the portal form fails,
// including navigation, missing elements and downloads that never arrive.
type DriverError struct {
	// Op describes the interaction that failed.
	Op  string
	Err error
}

// Error implements error.
func (e *DriverError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *DriverError) Unwrap() error {
	return e.Err
}

// FilesystemError is returned when a directory or artifact file cannot be
// created, checked or written.
type FilesystemError struct {
	// Op describes the filesystem operation that failed.
	Op  string
	Err error
}

// Error implements error.
func (e *FilesystemError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// IsDriverError reports whether err wraps a *DriverError.
func IsDriverError(err error) bool {
	var driverError *DriverError
	return errors.As(err, &driverError)
}

// IsFilesystemError reports whether err wraps a *FilesystemError.
func IsFilesystemError(err error) bool {
	var filesystemError *FilesystemError
	return errors.As(err, &filesystemError)
}
