package main

import "errors"

// errPartialFailure is returned by claim/release when at least one requested
// path did not succeed, so cobra's Execute reports a non-zero exit without
// printing a redundant top-level error line (the per-path detail has already
// been written to stdout).
var errPartialFailure = errors.New("one or more paths failed")

// exitCodeFor maps a command error to a process exit code. Every failure
// gitalong reports is binary at the process boundary (spec 6): 0 on success,
// 1 otherwise.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
