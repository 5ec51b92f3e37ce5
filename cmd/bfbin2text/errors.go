package main

import (
	"errors"
	"fmt"
)

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

var errUsage = errors.New("usage error")

// ExitCodeError carries an exit code without a message of its own.
type ExitCodeError struct {
	exitCode int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code: %d", e.exitCode)
}

// NewExitCodeError returns nil for exitCodeSuccess.
func NewExitCodeError(exitCode int) error {
	if exitCode == exitCodeSuccess {
		return nil
	}
	return &ExitCodeError{exitCode: exitCode}
}

// GetExitCode maps err to the process exit status: the code of an
// ExitCodeError, exitCodeSuccess for nil and exitCodeError otherwise.
func GetExitCode(err error) int {
	if err == nil {
		return exitCodeSuccess
	}
	var exitCodeErr *ExitCodeError
	if errors.As(err, &exitCodeErr) {
		return exitCodeErr.exitCode
	}
	return exitCodeError
}

// hasMessage reports whether err should be printed before exiting.
func hasMessage(err error) bool {
	var exitCodeErr *ExitCodeError
	return err != nil && !errors.As(err, &exitCodeErr)
}

// usageError is a command-line mistake. Its message is printed as is.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func (e *usageError) Is(target error) bool { return target == errUsage }
