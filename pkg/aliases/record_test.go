// pkg/aliases/record_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test glob pattern semantics

package aliases_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/kmoddb/pkg/aliases"
)

func TestPattern_Match(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"v1D6Bp0002*", "v1D6Bp0002ABCD", true},
		{"v1D6Bp0002*", "v1D6Bp0003ABCD", false},
		{"fs-ext4", "fs-ext4", true},
		{"fs-ext4", "fs-ext", false},
		{"v????", "v1234", true},
		{"v????", "v123", false},
		{"usb[0-9]", "usb3", true},
		{"usb[0-9]", "usbx", false},
		// Case sensitive.
		{"INT33A0:*", "int33a0:", false},
		// '*' crosses ':' freely, aliases have no separator concept.
		{"acpi*", "acpi:INT33A0:", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			p := aliases.MustCompilePattern(tt.pattern)
			assert.Equal(t, tt.want, p.Match(tt.input))
		})
	}
}
