package errors

import (
	"errors"
	"fmt"
)

var (
	ErrConfigNotFound = errors.New("config not found")
	ErrConfigInvalid  = errors.New("invalid configuration")
	ErrUnknownPlugin  = errors.New("unknown plugin kind")
	ErrMissingField   = errors.New("missing required field")
	ErrInvalidPattern = errors.New("invalid log pattern")
	ErrLineMismatch   = errors.New("line does not match pattern")
	ErrForwardWrite   = errors.New("forward write failed")
	ErrAlreadyStarted = errors.New("already started")
	ErrNotRunning     = errors.New("not running")
	ErrTimeout        = errors.New("operation timeout")
	ErrCanceled       = errors.New("operation canceled")
)

// NewConfigError reports an invalid value at a config field path such as "collectors.my-logs.path".
// NewConfigError 报告配置字段路径上的无效值。
func NewConfigError(field string, value interface{}) error {
	return fmt.Errorf("%w: field=%s value=%v", ErrConfigInvalid, field, value)
}

// NewMissingFieldError reports a required field that was not set.
// NewMissingFieldError 报告未设置的必填字段。
func NewMissingFieldError(section, name, field string) error {
	return fmt.Errorf("%w: %s.%s.%s", ErrMissingField, section, name, field)
}

// NewUnknownPluginError reports a plugin kind with no registered constructor.
// NewUnknownPluginError 报告没有注册构造函数的插件类型。
func NewUnknownPluginError(section, name, kind string) error {
	return fmt.Errorf("%w: %s.%s plugin=%q", ErrUnknownPlugin, section, name, kind)
}

// NewPatternError reports a malformed log format at the given byte offset.
// NewPatternError 报告给定字节偏移处的格式错误。
func NewPatternError(pattern string, pos int, reason string) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrInvalidPattern, reason, pos, pattern)
}

func NewMismatchError(line string) error {
	return fmt.Errorf("%w: %q", ErrLineMismatch, line)
}

// NewForwardError wraps the last write error once retries are exhausted.
// NewForwardError 在重试耗尽后包装最后一次写入错误。
func NewForwardError(target string, attempts int, err error) error {
	return fmt.Errorf("%w: target=%s attempts=%d: %v", ErrForwardWrite, target, attempts, err)
}

func NewTimeoutError(op string) error {
	return fmt.Errorf("%w: %s", ErrTimeout, op)
}
