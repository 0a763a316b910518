// Package lock provides cross-process file-based locking used to serialize
// mutating operations against a gitalong store on a single machine.
//
// Each store is locked by a file in the system temp directory, named from a
// hash of the store's locator (its clone path or document URL), containing
// the PID of the holder. A lock left behind by a dead process is detected
// (via signal 0) and recovered automatically.
package lock
