// pkg/sysfs/sysfs_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: afero memory filesystem
// PURPOSE: Test device modalias enumeration

package sysfs_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/kmoddb/pkg/errors"
	"github.com/arthur-debert/kmoddb/pkg/filesystem"
	"github.com/arthur-debert/kmoddb/pkg/paths"
	"github.com/arthur-debert/kmoddb/pkg/sysfs"
)

func newEnumerator(t *testing.T) (afero.Fs, *sysfs.Enumerator) {
	t.Helper()
	base := afero.NewMemMapFs()
	e := sysfs.New(filesystem.NewAferoFS(base), paths.NewWithRoots("/lib/modules", "/sys"))
	return base, e
}

func TestBusModaliases(t *testing.T) {
	base, e := newEnumerator(t)

	require.NoError(t, afero.WriteFile(base, "/sys/bus/acpi/devices/INT33A0:00/modalias", []byte("acpi:INT33A0:\n"), 0644))
	require.NoError(t, afero.WriteFile(base, "/sys/bus/acpi/devices/PNP0C0A:00/modalias", []byte("acpi:PNP0C0A:\n"), 0644))
	// A device without a modalias file is skipped.
	require.NoError(t, base.MkdirAll("/sys/bus/acpi/devices/LNXSYSTM:00", 0755))
	// Duplicate modaliases collapse.
	require.NoError(t, afero.WriteFile(base, "/sys/bus/acpi/devices/PNP0C0A:01/modalias", []byte("acpi:PNP0C0A:\n"), 0644))

	modaliases, err := e.BusModaliases("acpi")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"INT33A0:", "PNP0C0A:"}, modaliases)
}

func TestBusModaliases_MissingBusDir(t *testing.T) {
	_, e := newEnumerator(t)

	_, err := e.BusModaliases("pci")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}

func TestDMIModalias(t *testing.T) {
	base, e := newEnumerator(t)

	require.NoError(t, afero.WriteFile(base, "/sys/class/dmi/id/modalias",
		[]byte("dmi:bvnAcme:bvr1.0:svnAcme:pnWidget:\n"), 0644))

	dmi, err := e.DMIModalias()
	require.NoError(t, err)
	assert.Equal(t, "dmi:bvnAcme:bvr1.0:svnAcme:pnWidget:", dmi)
}

func TestDMIModalias_Missing(t *testing.T) {
	_, e := newEnumerator(t)

	_, err := e.DMIModalias()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}
