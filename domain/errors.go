package domain

import (
	"errors"
	"fmt"
)

// ScanErrorCode identifies the class of a scan failure.
type ScanErrorCode string

const (
	// ErrCodeInvalidInput rejects malformed scan parameters before any I/O.
	ErrCodeInvalidInput ScanErrorCode = "INVALID_INPUT"
	// ErrCodeArchiveNotReady means the analysis archive is absent or expired.
	ErrCodeArchiveNotReady ScanErrorCode = "ARCHIVE_NOT_READY"
	// ErrCodeArchiveCorrupt means the archive exists but cannot be read.
	ErrCodeArchiveCorrupt ScanErrorCode = "ARCHIVE_CORRUPT"
	// ErrCodeNoReadableManifests means manifests were found on disk but every
	// one of them was empty or unreadable. Returning zero findings here would
	// mask archive corruption as a clean repository.
	ErrCodeNoReadableManifests ScanErrorCode = "NO_READABLE_MANIFESTS"
	// ErrCodeRateLimited means the vulnerability registry answered 429.
	ErrCodeRateLimited ScanErrorCode = "UPSTREAM_RATE_LIMITED"
	// ErrCodeUpstream covers every other registry failure.
	ErrCodeUpstream ScanErrorCode = "UPSTREAM_UNAVAILABLE"
)

// ScanError is the typed error surfaced to callers for failures occurring
// before any findings exist. Once detail fetching starts, per-item failures
// are absorbed and never produce a ScanError.
type ScanError struct {
	Code      ScanErrorCode
	Message   string
	Retryable bool
	cause     error
}

func (e *ScanError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScanError) Unwrap() error { return e.cause }

// NewScanError creates a non-retryable typed scan failure.
func NewScanError(code ScanErrorCode, message string, cause error) *ScanError {
	return &ScanError{Code: code, Message: message, cause: cause}
}

// NewRetryableError creates a typed failure the caller may retry with backoff.
func NewRetryableError(code ScanErrorCode, message string, cause error) *ScanError {
	return &ScanError{Code: code, Message: message, Retryable: true, cause: cause}
}

// CodeOf extracts the ScanErrorCode from err, or ErrCodeUpstream when err is
// not a ScanError.
func CodeOf(err error) ScanErrorCode {
	var se *ScanError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeUpstream
}

// IsRetryable reports whether err is a retryable scan failure.
func IsRetryable(err error) bool {
	var se *ScanError
	return errors.As(err, &se) && se.Retryable
}

// Archive store sentinel conditions.
var (
	ErrArchiveNotReady = errors.New("archive not ready or expired")
	ErrArchiveCorrupt  = errors.New("archive corrupt")
)
