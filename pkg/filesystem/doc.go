// Package filesystem provides filesystem implementations for kmoddb.
//
// This package contains implementations of the types.FS interface,
// including the standard OS filesystem and test filesystems.
package filesystem
