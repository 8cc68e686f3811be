package types

import "io/fs"

// FS abstracts filesystem access for kmoddb.
// All reads of /lib/modules and /sys go through this interface so tests
// can run against an in-memory filesystem.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)

	// Directory operations
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Readlink(name string) (string, error)

	// Resolve returns name with all symlinks resolved, like
	// filepath.EvalSymlinks.
	Resolve(name string) (string, error)

	// Optional operations - implementations should check for support
	// For testing, Lstat can fall back to Stat
	Lstat(name string) (fs.FileInfo, error)
}

// Pather provides the on-disk layout kmoddb reads from.
type Pather interface {
	// ModulesDir returns the metadata directory for a kernel version,
	// e.g. /lib/modules/6.9.0.
	ModulesDir(kernelVersion string) string

	// BuiltinModinfo returns the path to modules.builtin.modinfo.
	BuiltinModinfo(kernelVersion string) string

	// ModulesAlias returns the path to modules.alias.
	ModulesAlias(kernelVersion string) string

	// SysDevicesDir returns the device directory for a bus,
	// e.g. /sys/bus/pci/devices.
	SysDevicesDir(bus string) string

	// DMIModalias returns the path to the platform DMI modalias file.
	DMIModalias() string

	// BlockDevice returns the sysfs path for a named block device.
	BlockDevice(name string) string
}
