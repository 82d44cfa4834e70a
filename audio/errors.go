package audio

import (
	"errors"
	"fmt"
)

// ErrorKind classifies hard extraction failures.
type ErrorKind string

const (
	// KindNotAudio means the file content does not match the format it was
	// presented as (or is not a supported audio format at all).
	KindNotAudio ErrorKind = "not_audio"
	// KindCorrupt means the format was recognized but its structure could
	// not be parsed.
	KindCorrupt ErrorKind = "corrupt"
)

// ExtractionError is a hard per-file failure. Soft conditions (missing
// fields, unreadable duration) are reported as warnings on the TrackRecord
// instead.
type ExtractionError struct {
	Path string
	Kind ErrorKind
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("audio: %s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("audio: %s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind carried by err, or "" when err is not an
// ExtractionError.
func KindOf(err error) ErrorKind {
	var xe *ExtractionError
	if errors.As(err, &xe) {
		return xe.Kind
	}
	return ""
}

func notAudio(path string, err error) *ExtractionError {
	return &ExtractionError{Path: path, Kind: KindNotAudio, Err: err}
}

func corrupt(path string, err error) *ExtractionError {
	return &ExtractionError{Path: path, Kind: KindCorrupt, Err: err}
}
