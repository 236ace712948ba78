package merger

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is matching.
var (
	ErrMissingBuildOutput = errors.New("missing build output")
	ErrMissingInputFile   = errors.New("missing input file")
	ErrIO                 = errors.New("i/o failure")
	ErrOutputConflict     = errors.New("output conflict")
)

// MissingBuildOutputError indicates the build directory does not exist.
type MissingBuildOutputError struct {
	Dir string
}

func (e *MissingBuildOutputError) Error() string {
	return fmt.Sprintf("build directory %q not found", e.Dir)
}

func (e *MissingBuildOutputError) Is(target error) bool {
	return target == ErrMissingBuildOutput
}

// MissingInputFileError lists every expected input file that is absent.
type MissingInputFileError struct {
	Paths []string
}

func (e *MissingInputFileError) Error() string {
	return fmt.Sprintf("missing build files: %s", strings.Join(e.Paths, ", "))
}

func (e *MissingInputFileError) Is(target error) bool {
	return target == ErrMissingInputFile
}

// OutputConflictError indicates the image and its HEX copy share a path.
type OutputConflictError struct {
	Path string
}

func (e *OutputConflictError) Error() string {
	return fmt.Sprintf("image and Intel HEX output are both %s", e.Path)
}

func (e *OutputConflictError) Is(target error) bool {
	return target == ErrOutputConflict
}

// IOError wraps a read or write failure during the merge.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}
