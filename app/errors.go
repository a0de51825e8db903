package app

import (
	"errors"
	"fmt"

	"github.com/aluiziolira/wishlist-watch/extractor"
)

// ConfigError indicates missing or invalid configuration.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ProviderError indicates the wishlist markup could not be obtained.
type ProviderError struct {
	Source string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("cannot read wishlist from %s: %v", e.Source, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// RawSaveError indicates the raw markup could not be saved with --save.
type RawSaveError struct {
	Path string
	Err  error
}

func (e *RawSaveError) Error() string {
	return fmt.Sprintf("unable to save %s: %v", e.Path, e.Err)
}

func (e *RawSaveError) Unwrap() error {
	return e.Err
}

// ReportError indicates the report could not be written out.
type ReportError struct {
	Err error
}

func (e *ReportError) Error() string {
	return e.Err.Error()
}

func (e *ReportError) Unwrap() error {
	return e.Err
}

// SnapshotSaveError indicates the new snapshot could not be persisted. The
// previous snapshot is left as it was.
type SnapshotSaveError struct {
	Path string
	Err  error
}

func (e *SnapshotSaveError) Error() string {
	return fmt.Sprintf("unable to save snapshot %s: %v", e.Path, e.Err)
}

func (e *SnapshotSaveError) Unwrap() error {
	return e.Err
}

// ErrorLabel maps err to its label in the run error taxonomy.
func ErrorLabel(err error) string {
	if err == nil {
		return "none"
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return "config"
	}
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return "provider"
	}
	var rawErr *RawSaveError
	if errors.As(err, &rawErr) {
		return "raw_save"
	}
	var extractErr *extractor.ExtractionError
	if errors.As(err, &extractErr) {
		return "extraction"
	}
	var reportErr *ReportError
	if errors.As(err, &reportErr) {
		return "report"
	}
	var saveErr *SnapshotSaveError
	if errors.As(err, &saveErr) {
		return "snapshot_save"
	}
	return "other"
}

// UserMessage renders err as the single line shown to the user.
func UserMessage(err error) string {
	return fmt.Sprintf("%s error: %v", ErrorLabel(err), err)
}
