// Package apperr defines the typed failures raised while producing show notes.
//
// Two scopes exist. Run-scoped errors (a missing tool, a missing API key,
// invalid options) stop the whole invocation. Everything else is item-scoped:
// the current item is abandoned and batch drivers move on to the next one.
package apperr

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// runScoped is implemented by errors that must terminate the whole run.
type runScoped interface {
	RunScoped() bool
}

// IsRunScoped reports whether err (or anything it wraps) is fatal for the run.
func IsRunScoped(err error) bool {
	var rs runScoped
	if errors.As(err, &rs) {
		return rs.RunScoped()
	}
	return false
}

// DependencyMissingError reports an external tool that is not installed.
type DependencyMissingError struct {
	Tool string
	Err  error
}

func (e *DependencyMissingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("required dependency %q is not available: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("required dependency %q is not available", e.Tool)
}

func (e *DependencyMissingError) Unwrap() error  { return e.Err }
func (e *DependencyMissingError) RunScoped() bool { return true }

// CredentialMissingError reports an API key that a selected backend needs.
type CredentialMissingError struct {
	Backend  string
	Variable string
}

func (e *CredentialMissingError) Error() string {
	return fmt.Sprintf("%s requires the %s environment variable to be set", e.Backend, e.Variable)
}

func (e *CredentialMissingError) RunScoped() bool { return true }

// MetadataExtractionError is returned when a media URL yields incomplete metadata.
type MetadataExtractionError struct {
	URL   string
	Field string
	Err   error
}

func (e *MetadataExtractionError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("metadata extraction failed for %s: %v", e.URL, e.Err)
	case e.Field != "":
		return fmt.Sprintf("metadata extraction failed for %s: missing %s", e.URL, e.Field)
	default:
		return fmt.Sprintf("metadata extraction failed for %s", e.URL)
	}
}

func (e *MetadataExtractionError) Unwrap() error { return e.Err }

// UnsupportedFormatError is returned for local inputs whose container cannot be used.
type UnsupportedFormatError struct {
	Path   string
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("could not detect media format of %s", e.Path)
	}
	return fmt.Sprintf("unsupported media format %q for %s", e.Format, e.Path)
}

// AcquisitionError is returned when the downloader or transcoder fails.
type AcquisitionError struct {
	Source string
	Stderr string
	Err    error
}

func (e *AcquisitionError) Error() string {
	msg := fmt.Sprintf("audio acquisition failed for %s: %v", e.Source, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\n" + stderr
	}
	return msg
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// TranscriptionFailedError is returned when a transcription backend fails.
type TranscriptionFailedError struct {
	Backend string
	Message string
	Err     error
}

func (e *TranscriptionFailedError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s transcription failed: %s: %v", e.Backend, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s transcription failed: %s", e.Backend, e.Message)
	default:
		return fmt.Sprintf("%s transcription failed: %v", e.Backend, e.Err)
	}
}

func (e *TranscriptionFailedError) Unwrap() error { return e.Err }

// TranscriptionTimeoutError is returned when a remote transcription job does
// not finish within the configured number of polls.
type TranscriptionTimeoutError struct {
	Backend  string
	JobID    string
	Attempts int
}

func (e *TranscriptionTimeoutError) Error() string {
	return fmt.Sprintf("%s transcription job %s did not finish after %d polls", e.Backend, e.JobID, e.Attempts)
}

// FeedFetchError is returned when an RSS feed cannot be downloaded or parsed.
type FeedFetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FeedFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching feed %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching feed %s: %v", e.URL, e.Err)
}

func (e *FeedFetchError) Unwrap() error { return e.Err }

// FeedFetchTimeoutError is returned when the feed request exceeds its deadline.
type FeedFetchTimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *FeedFetchTimeoutError) Error() string {
	return fmt.Sprintf("fetching feed %s timed out after %s", e.URL, e.Timeout)
}

// NoMatchingItemsError is returned when none of the requested enclosure URLs exist in a feed.
type NoMatchingItemsError struct {
	Requested []string
}

func (e *NoMatchingItemsError) Error() string {
	return fmt.Sprintf("no feed items match the requested URLs: %s", strings.Join(e.Requested, ", "))
}

// LLMRequestError is returned when a language model provider call fails.
type LLMRequestError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *LLMRequestError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("%s request failed after %d attempts: %v", e.Provider, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *LLMRequestError) Unwrap() error { return e.Err }

// StageError attaches the failing pipeline stage and item to a cause.
type StageError struct {
	Stage string
	Item  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed for %s: %v", e.Stage, e.Item, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
