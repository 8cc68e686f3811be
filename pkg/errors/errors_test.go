// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and code checks

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/kmoddb/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "alias_not_found",
			code:    errors.ErrAliasNotFound,
			message: "kernel module alias not found: foo",
			wantStr: "[ALIAS_NOT_FOUND] kernel module alias not found: foo",
		},
		{
			name:    "unknown_kernel_version",
			code:    errors.ErrUnknownKernelVersion,
			message: "unknown kernel version: 1.2.3",
			wantStr: "[UNKNOWN_KERNEL_VERSION] unknown kernel version: 1.2.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}
			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	inner := stderrors.New("open /x: no such file")
	err := errors.Wrap(inner, errors.ErrMissingDataFile, "metadata file missing")

	if !stderrors.Is(err, inner) {
		t.Error("wrapped error should satisfy errors.Is for the inner error")
	}
	if errors.GetErrorCode(err) != errors.ErrMissingDataFile {
		t.Errorf("GetErrorCode() = %v, want %v", errors.GetErrorCode(err), errors.ErrMissingDataFile)
	}

	if errors.Wrap(nil, errors.ErrInternal, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestIsErrorCode(t *testing.T) {
	err := errors.Newf(errors.ErrDeviceNotFound, "block device not found: %s", "sdz")

	if !errors.IsErrorCode(err, errors.ErrDeviceNotFound) {
		t.Error("IsErrorCode should match the error's own code")
	}
	if errors.IsErrorCode(err, errors.ErrAliasNotFound) {
		t.Error("IsErrorCode should not match a different code")
	}
	if errors.IsErrorCode(stderrors.New("plain"), errors.ErrDeviceNotFound) {
		t.Error("IsErrorCode should not match a plain error")
	}
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrAliasNotFound, "not found").WithDetail("alias", "foo")

	if err.Details["alias"] != "foo" {
		t.Errorf("Details[alias] = %v, want foo", err.Details["alias"])
	}
}

func TestGetErrorCode_Unknown(t *testing.T) {
	if errors.GetErrorCode(stderrors.New("plain")) != errors.ErrUnknown {
		t.Error("plain errors should report ErrUnknown")
	}
}
