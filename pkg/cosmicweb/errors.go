// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cosmicweb

import (
	"errors"
	"fmt"
)

// Common errors returned by the library.
var (
	// ErrNotFound is returned when the target UUID or publication name does
	// not exist on the service.
	ErrNotFound = errors.New("target not found")

	// ErrMissingTarget is returned when no target identifier is specified.
	ErrMissingTarget = errors.New("missing target identifier")
)

// APIError represents an unexpected response from the cosmICweb service:
// a non-2xx status on a metadata endpoint, or a body that does not match the
// expected manifest shape.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("service error: %s (%s)", e.Message, e.URL)
	}
	if e.Message != "" {
		return fmt.Sprintf("service error %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("service error %d: %s", e.StatusCode, e.Status)
}

// Is implements errors.Is for common error comparisons.
func (e *APIError) Is(target error) bool {
	return e.StatusCode == 404 && errors.Is(target, ErrNotFound)
}

// DownloadError wraps a file download failure with halo context, possibly
// after exhausting the retry budget.
type DownloadError struct {
	Halo     string
	Name     string
	Attempts int
	Err      error
}

func (e *DownloadError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("download %s/%s failed after %d attempts: %v", e.Halo, e.Name, e.Attempts, e.Err)
	}
	return fmt.Sprintf("download %s/%s: %v", e.Halo, e.Name, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// FilesystemError is returned when an output directory or file cannot be
// created. It aborts the affected halo but not the batch.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem error at %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}
