package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	sentinelErrors := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrConfigNotFound", ErrConfigNotFound, "config not found"},
		{"ErrConfigInvalid", ErrConfigInvalid, "invalid configuration"},
		{"ErrUnknownPlugin", ErrUnknownPlugin, "unknown plugin kind"},
		{"ErrMissingField", ErrMissingField, "missing required field"},
		{"ErrInvalidPattern", ErrInvalidPattern, "invalid log pattern"},
		{"ErrLineMismatch", ErrLineMismatch, "line does not match pattern"},
		{"ErrForwardWrite", ErrForwardWrite, "forward write failed"},
		{"ErrAlreadyStarted", ErrAlreadyStarted, "already started"},
		{"ErrNotRunning", ErrNotRunning, "not running"},
		{"ErrTimeout", ErrTimeout, "operation timeout"},
		{"ErrCanceled", ErrCanceled, "operation canceled"},
	}

	for _, tc := range sentinelErrors {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err == nil {
				t.Errorf("%s is nil", tc.name)
				return
			}
			if tc.err.Error() != tc.msg {
				t.Errorf("%s: got %q, want %q", tc.name, tc.err.Error(), tc.msg)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     string
	}{
		{
			name:     "config error",
			err:      NewConfigError("engine.buffer_size", -1),
			sentinel: ErrConfigInvalid,
			want:     "invalid configuration: field=engine.buffer_size value=-1",
		},
		{
			name:     "missing field",
			err:      NewMissingFieldError("collectors", "logs-collector", "path"),
			sentinel: ErrMissingField,
			want:     "missing required field: collectors.logs-collector.path",
		},
		{
			name:     "unknown plugin",
			err:      NewUnknownPluginError("forwarders", "out", "kafka"),
			sentinel: ErrUnknownPlugin,
			want:     `unknown plugin kind: forwarders.out plugin="kafka"`,
		},
		{
			name:     "pattern error",
			err:      NewPatternError("<Date", 0, "unterminated placeholder"),
			sentinel: ErrInvalidPattern,
			want:     `invalid log pattern: unterminated placeholder at offset 0 in "<Date"`,
		},
		{
			name:     "mismatch",
			err:      NewMismatchError("garbage"),
			sentinel: ErrLineMismatch,
			want:     `line does not match pattern: "garbage"`,
		},
		{
			name:     "forward error",
			err:      NewForwardError("/tmp/out", 3, fmt.Errorf("disk full")),
			sentinel: ErrForwardWrite,
			want:     "forward write failed: target=/tmp/out attempts=3: disk full",
		},
		{
			name:     "timeout",
			err:      NewTimeoutError("pipeline drain"),
			sentinel: ErrTimeout,
			want:     "operation timeout: pipeline drain",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Error() != tc.want {
				t.Errorf("got %q, want %q", tc.err.Error(), tc.want)
			}
			if !errors.Is(tc.err, tc.sentinel) {
				t.Errorf("error should wrap %v", tc.sentinel)
			}
		})
	}
}

func TestWrappedConfigErrorStillMatches(t *testing.T) {
	err := fmt.Errorf("loading pipelines: %w", NewMissingFieldError("forwarders", "disk", "filename"))
	if !errors.Is(err, ErrMissingField) {
		t.Error("wrapped error should still match ErrMissingField")
	}
	if errors.Is(err, ErrConfigInvalid) {
		t.Error("missing field error should not match ErrConfigInvalid")
	}
}
