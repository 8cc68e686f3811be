// Package paths centralizes the on-disk layout kmoddb reads from: the
// /lib/modules metadata tree and the sysfs device hierarchy. Roots are
// overridable so tests can point everything at a fixture filesystem.
package paths

import (
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/arthur-debert/kmoddb/pkg/errors"
	"github.com/arthur-debert/kmoddb/pkg/types"
)

// Default filesystem roots.
const (
	DefaultModulesRoot = "/lib/modules"
	DefaultSysfsRoot   = "/sys"
)

// Metadata file names under /lib/modules/<version>/.
const (
	BuiltinModinfoFile = "modules.builtin.modinfo"
	ModulesAliasFile   = "modules.alias"
)

// Paths implements types.Pather over configurable roots.
type Paths struct {
	modulesRoot string
	sysfsRoot   string
}

// New returns the standard system layout.
func New() *Paths {
	return NewWithRoots(DefaultModulesRoot, DefaultSysfsRoot)
}

// NewWithRoots returns a layout rooted at the given directories.
func NewWithRoots(modulesRoot, sysfsRoot string) *Paths {
	return &Paths{modulesRoot: modulesRoot, sysfsRoot: sysfsRoot}
}

// ModulesRoot returns the directory holding per-version metadata.
func (p *Paths) ModulesRoot() string {
	return p.modulesRoot
}

// ModulesDir returns the metadata directory for a kernel version.
func (p *Paths) ModulesDir(kernelVersion string) string {
	return filepath.Join(p.modulesRoot, kernelVersion)
}

// BuiltinModinfo returns the path to modules.builtin.modinfo.
func (p *Paths) BuiltinModinfo(kernelVersion string) string {
	return filepath.Join(p.ModulesDir(kernelVersion), BuiltinModinfoFile)
}

// ModulesAlias returns the path to modules.alias.
func (p *Paths) ModulesAlias(kernelVersion string) string {
	return filepath.Join(p.ModulesDir(kernelVersion), ModulesAliasFile)
}

// SysDevicesDir returns the device directory for a bus.
func (p *Paths) SysDevicesDir(bus string) string {
	return filepath.Join(p.sysfsRoot, "bus", bus, "devices")
}

// DMIModalias returns the path to the platform DMI modalias file.
func (p *Paths) DMIModalias() string {
	return filepath.Join(p.sysfsRoot, "class", "dmi", "id", "modalias")
}

// BlockDevice returns the sysfs path for a named block device.
func (p *Paths) BlockDevice(name string) string {
	return filepath.Join(p.sysfsRoot, "class", "block", name)
}

// KernelVersions lists the kernel versions with a metadata directory.
func (p *Paths) KernelVersions(fs types.FS) ([]string, error) {
	entries, err := fs.ReadDir(p.modulesRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list %s", p.modulesRoot)
	}
	var versions []string
	for _, entry := range entries {
		if entry.IsDir() {
			versions = append(versions, entry.Name())
		}
	}
	return versions, nil
}

// CurrentKernelVersion returns the running kernel's release string from
// uname(2).
func CurrentKernelVersion() (string, error) {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "uname failed")
	}

	release := make([]byte, 0, len(uname.Release))
	for _, c := range uname.Release {
		if c == 0 {
			break
		}
		release = append(release, c)
	}
	return string(release), nil
}

var _ types.Pather = (*Paths)(nil)
