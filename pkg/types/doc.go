// Package types defines the shared interfaces used across kmoddb,
// primarily the filesystem abstraction the index and resolvers read
// through.
package types
