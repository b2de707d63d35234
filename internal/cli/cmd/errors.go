// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cmd

import "fmt"

// FlagError is an invalid flag or argument. The root command prints the usage
// of the failing command along with it.
type FlagError struct {
	Err error
}

func (e *FlagError) Error() string {
	return e.Err.Error()
}

func (e *FlagError) Unwrap() error {
	return e.Err
}

func FlagErrorf(format string, args ...any) error {
	return &FlagError{Err: fmt.Errorf(format, args...)}
}

func FlagErrorWrap(err error) error {
	if err == nil {
		return nil
	}
	return &FlagError{Err: err}
}

// RenderedError is an agent error already formatted for the terminal.
type RenderedError struct {
	Err     error
	Message string
}

func (e *RenderedError) Error() string {
	return e.Err.Error()
}

func (e *RenderedError) Unwrap() error {
	return e.Err
}
