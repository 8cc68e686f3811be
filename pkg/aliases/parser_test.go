// pkg/aliases/parser_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test alias line dispatch and the two load passes

package aliases_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/kmoddb/pkg/aliases"
	"github.com/arthur-debert/kmoddb/pkg/config"
)

func newTestStore(t *testing.T) (*aliases.Store, *aliases.Parser) {
	t.Helper()
	cfg := config.Default()
	store := aliases.NewStore(cfg)
	return store, aliases.NewParser(cfg, store)
}

func TestProcessAlias_Generic(t *testing.T) {
	store, parser := newTestStore(t)

	parser.ProcessAlias("alias fs-ext4 ext4")

	recs, ok := store.Generic().Get("ext4")
	require.True(t, ok)
	require.Len(t, recs, 1)
	assert.Equal(t, "fs-ext4", recs[0].Pattern.Text)
	assert.Empty(t, recs[0].Bus)
}

func TestProcessAlias_PlainBus(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		bus    string
		module string
		text   string
	}{
		{
			name:   "usb",
			line:   "alias usb:v1D6Bp0002* hub",
			bus:    "usb",
			module: "hub",
			text:   "v1D6Bp0002*",
		},
		{
			name:   "pci",
			line:   "alias pci:v00008086d00001234sv*sd*bc*sc*i* e1000e",
			bus:    "pci",
			module: "e1000e",
			text:   "v00008086d00001234sv*sd*bc*sc*i*",
		},
		{
			name:   "acpi",
			line:   "alias acpi:INT33A0:* intel_smart_connect",
			bus:    "acpi",
			module: "intel_smart_connect",
			text:   "INT33A0:*",
		},
		{
			name:   "bus with trailing star",
			line:   "alias usb*:v0123* widget",
			bus:    "usb",
			module: "widget",
			text:   "v0123*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, parser := newTestStore(t)
			parser.ProcessAlias(tt.line)

			index, ok := store.PlainBus(tt.bus)
			require.True(t, ok)
			recs, ok := index.Get(tt.module)
			require.True(t, ok)
			require.Len(t, recs, 1)
			assert.Equal(t, tt.text, recs[0].Pattern.Text)
			assert.Equal(t, tt.bus, recs[0].Bus)

			// Nothing leaks into the generic index.
			assert.Equal(t, 0, store.Generic().Len())
		})
	}
}

func TestProcessAlias_IgnoredBus(t *testing.T) {
	store, parser := newTestStore(t)

	parser.ProcessAlias("alias hid:b0003g*v000004D9p0000A052 hid-holtek-kbd")
	parser.ProcessAlias("alias wmi*:95F24279-4D7B-4334-9387-ACCDC67EF61C hp_wmi")

	assert.Equal(t, 0, store.Generic().Len())
	index, _ := store.PlainBus("usb")
	assert.Equal(t, 0, index.Len())
}

func TestProcessAlias_UnknownBusDropped(t *testing.T) {
	store, parser := newTestStore(t)

	parser.ProcessAlias("alias frobnicator:x123 frob_driver")

	assert.Equal(t, 0, store.Generic().Len())
}

func TestProcessAlias_Cpu(t *testing.T) {
	t.Run("typed cpu alias", func(t *testing.T) {
		store, parser := newTestStore(t)
		parser.ProcessAlias("alias cpu:type:x86,ven0000fam0006mod002A:feature:* rapl")

		recs, ok := store.Cpu().Get("rapl")
		require.True(t, ok)
		require.Len(t, recs, 1)
		assert.Equal(t, "x86", recs[0].Arch.Text)
		assert.Equal(t, "ven0000fam0006mod002A", recs[0].Info.Text)
		assert.Equal(t, "*", recs[0].Features.Text)
	})

	t.Run("wildcard type with feature", func(t *testing.T) {
		store, parser := newTestStore(t)
		parser.ProcessAlias("alias cpu:type:*:feature:0081 kvm_intel")

		recs, ok := store.Cpu().Get("kvm_intel")
		require.True(t, ok)
		require.Len(t, recs, 1)
		assert.Equal(t, "*", recs[0].Arch.Text)
		assert.Equal(t, "*", recs[0].Info.Text)
		assert.Equal(t, "0081", recs[0].Features.Text)
	})

	t.Run("fully wildcard degrades to generic", func(t *testing.T) {
		store, parser := newTestStore(t)
		parser.ProcessAlias("alias cpu:type:*:feature:* crc32c_intel")

		assert.Equal(t, 0, store.Cpu().Len())
		recs, ok := store.Generic().Get("crc32c_intel")
		require.True(t, ok)
		require.Len(t, recs, 1)
		assert.Equal(t, "cpu:type:*:feature:*", recs[0].Pattern.Text)
		assert.Equal(t, "cpu", recs[0].Bus)
	})

	t.Run("odd token count skipped", func(t *testing.T) {
		store, parser := newTestStore(t)
		parser.ProcessAlias("alias cpu:type:x86,info:feature brokenmod")

		assert.Equal(t, 0, store.Cpu().Len())
		assert.Equal(t, 0, store.Generic().Len())
	})

	t.Run("duplicate key skipped", func(t *testing.T) {
		store, parser := newTestStore(t)
		parser.ProcessAlias("alias cpu:type:x86,a:type:x86,b brokenmod")

		assert.Equal(t, 0, store.Cpu().Len())
	})

	t.Run("missing feature key skipped", func(t *testing.T) {
		store, parser := newTestStore(t)
		parser.ProcessAlias("alias cpu:type:x86,a:other:b brokenmod")

		assert.Equal(t, 0, store.Cpu().Len())
	})

	t.Run("load continues after malformed alias", func(t *testing.T) {
		store, parser := newTestStore(t)
		parser.LoadAliasFile([]byte(strings.Join([]string{
			"alias cpu:type:x86,a:type:x86,b brokenmod",
			"alias fs-ext4 ext4",
		}, "\n")))

		_, ok := store.Generic().Get("ext4")
		assert.True(t, ok)
	})
}

func TestProcessAlias_Dmi(t *testing.T) {
	store, parser := newTestStore(t)

	parser.ProcessAlias("alias dmi*:bvn*:bvr*:bd*:svnAcme*:pn*: acme_platform")

	recs, ok := store.Dmi().Get("acme_platform")
	require.True(t, ok)
	require.Len(t, recs, 1)

	var fields []string
	for _, f := range recs[0].Fields {
		fields = append(fields, f.Text)
	}
	// Empty segments are dropped, order is preserved.
	assert.Equal(t, []string{"bvn*", "bvr*", "bd*", "svnAcme*", "pn*"}, fields)
}

func TestProcessAlias_Of(t *testing.T) {
	t.Run("compatible suffix rewritten", func(t *testing.T) {
		store, parser := newTestStore(t)
		parser.ProcessAlias("alias of:N*T*Cbrcm,bcm2835-pmC* raspberrypi_pm")

		recs, ok := store.Of().Get("raspberrypi_pm")
		require.True(t, ok)
		require.Len(t, recs, 1)
		assert.Equal(t, "brcm,bcm2835-pm*", recs[0].Pattern.Text)
	})

	t.Run("no compatible suffix", func(t *testing.T) {
		store, parser := newTestStore(t)
		parser.ProcessAlias("alias of:N*T*Cvendor,model somemod")

		recs, ok := store.Of().Get("somemod")
		require.True(t, ok)
		assert.Equal(t, "vendor,model", recs[0].Pattern.Text)
	})

	t.Run("missing structural prefix dropped", func(t *testing.T) {
		store, parser := newTestStore(t)
		parser.ProcessAlias("alias of:Cvendor,model somemod")

		assert.Equal(t, 0, store.Of().Len())
	})
}

func TestProcessAlias_Virtio(t *testing.T) {
	t.Run("device and vendor id", func(t *testing.T) {
		store, parser := newTestStore(t)
		parser.ProcessAlias("alias virtio:d00000001v* virtio_net")

		recs, ok := store.Virtio().Get("virtio_net")
		require.True(t, ok)
		require.Len(t, recs, 1)
		assert.Equal(t, "00000001", recs[0].DeviceID.Text)
		assert.Equal(t, "*", recs[0].VendorID.Text)
	})

	t.Run("malformed shape dropped", func(t *testing.T) {
		store, parser := newTestStore(t)
		parser.ProcessAlias("alias virtio:bogus virtio_broken")

		assert.Equal(t, 0, store.Virtio().Len())
	})
}

func TestLoadAliasFile_IgnoresNonAliasLines(t *testing.T) {
	store, parser := newTestStore(t)

	parser.LoadAliasFile([]byte(strings.Join([]string{
		"# modules.alias generated by depmod",
		"",
		"alias fs-ext4 ext4",
		"not-an-alias usb:v1234* nope",
	}, "\n")))

	assert.Equal(t, 1, store.Generic().Len())
	_, ok := store.Generic().Get("ext4")
	assert.True(t, ok)
}

func TestLoadBuiltinModinfo(t *testing.T) {
	store, parser := newTestStore(t)

	records := []string{
		"ext4.alias fs-ext4", // no '=', skipped
		"ext4.alias=fs-ext4",
		"ext4.license=GPL",
		"usbcore.alias=usb:v*p*d*dc09dsc00dp*ic*isc*ip*in*",
		"\xff\xfegarbage",
	}
	data := []byte(strings.Join(records, "\x00"))

	parser.LoadBuiltinModinfo(data)

	// Builtin set only contains modules with alias records.
	assert.True(t, store.IsBuiltin("ext4"))
	assert.True(t, store.IsBuiltin("usbcore"))
	assert.False(t, store.IsBuiltin("garbage"))

	// The alias went through the regular dispatcher.
	_, ok := store.Generic().Get("ext4")
	assert.True(t, ok)
	index, _ := store.PlainBus("usb")
	_, ok = index.Get("usbcore")
	assert.True(t, ok)
}

func TestStore_InsertionOrderPreserved(t *testing.T) {
	store, parser := newTestStore(t)

	parser.ProcessAlias("alias pattern-* first")
	parser.ProcessAlias("alias pattern-* second")

	var order []string
	store.Generic().Each(func(module string, recs []aliases.PlainRecord) bool {
		order = append(order, module)
		return true
	})
	assert.Equal(t, []string{"first", "second"}, order)
}
