package convert

import (
	"fmt"
)

// Stage names a step of the conversion pipeline.
type Stage string

const (
	StageRead       Stage = "read"
	StageDecode     Stage = "decode"
	StageParse      Stage = "parse"
	StageNesting    Stage = "flatten nesting"
	StageProperties Stage = "resolve custom properties"
	StageHeader     Stage = "header"
	StageSerialize  Stage = "serialize"
	StageWrite      Stage = "write"
)

// Process exit codes.
const (
	ExitFailure  = 1
	ExitUsage    = 2
	ExitNotFound = 3
)

// UsageError reports malformed command line, for example missing input path.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage: %v", e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func (e *UsageError) ExitCode() int {
	return ExitUsage
}

// NotFoundError reports input path which does not resolve to a regular file.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input file not found: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("input file not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

func (e *NotFoundError) ExitCode() int {
	return ExitNotFound
}

// StageError wraps failure of a single pipeline stage. Wrapped error is kept
// as is, so *parse.Error positions survive.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (e *StageError) ExitCode() int {
	return ExitFailure
}
