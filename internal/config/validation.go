package config

import (
	"errors"
	"fmt"
	"strings"

	safErrors "github.com/netxfw/saf/pkg/errors"
)

// KindChecker reports whether a plugin kind is known for a section.
// KindChecker 报告某个段中的插件类型是否已知。
type KindChecker interface {
	HasKind(section, kind string) bool
}

// ValidationError represents a single validation error.
// ValidationError 表示单个验证错误。
type ValidationError struct {
	Field string `json:"field"` // Field path (e.g., "pipelines.my-pipeline.collect")
	Err   error  `json:"-"`
}

func (e ValidationError) Error() string {
	return e.Err.Error()
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidationWarning represents a potential issue that's not critical.
// ValidationWarning 表示非关键的潜在问题。
type ValidationWarning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult contains all validation errors and warnings.
// ValidationResult 包含所有验证错误和警告。
type ValidationResult struct {
	Valid    bool                `json:"valid"`
	Errors   []ValidationError   `json:"errors"`
	Warnings []ValidationWarning `json:"warnings"`
}

// AddError adds a validation error.
// AddError 添加验证错误。
func (r *ValidationResult) AddError(field string, err error) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Err: err})
	r.Valid = false
}

// AddWarning adds a validation warning.
// AddWarning 添加验证警告。
func (r *ValidationResult) AddWarning(field, message string) {
	r.Warnings = append(r.Warnings, ValidationWarning{Field: field, Message: message})
}

// Err returns nil for a valid result, otherwise one error wrapping ErrConfigInvalid
// and every individual error.
// Err 对有效结果返回 nil，否则返回包装 ErrConfigInvalid 及所有单项错误的错误。
func (r *ValidationResult) Err() error {
	if r.Valid || len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i := range r.Errors {
		errs[i] = r.Errors[i]
	}
	return fmt.Errorf("%w: %d error(s): %w", safErrors.ErrConfigInvalid, len(errs), errors.Join(errs...))
}

// String renders errors and warnings one per line.
func (r *ValidationResult) String() string {
	var b strings.Builder
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "error   %s: %v\n", e.Field, e.Err)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "warning %s: %s\n", w.Field, w.Message)
	}
	return b.String()
}

// Validate checks every definition and reports all problems at once.
// Validate 检查所有定义并一次性报告全部问题。
func (c *Config) Validate(kinds KindChecker) *ValidationResult {
	r := &ValidationResult{Valid: true}

	if c.Engine.BufferSize < 0 {
		r.AddError("engine.buffer_size", safErrors.NewConfigError("engine.buffer_size", c.Engine.BufferSize))
	}
	if c.Engine.ShutdownTimeout < 0 {
		r.AddError("engine.shutdown_timeout", safErrors.NewConfigError("engine.shutdown_timeout", c.Engine.ShutdownTimeout))
	}

	sections := []struct {
		name string
		defs map[string]*PluginConfig
	}{
		{SectionCollectors, c.Collectors},
		{SectionProcessors, c.Processors},
		{SectionForwarders, c.Forwarders},
	}
	for _, s := range sections {
		for _, name := range sortedKeys(s.defs) {
			def := s.defs[name]
			field := s.name + "." + name + ".plugin"
			switch {
			case def == nil || def.Plugin == "":
				r.AddError(field, safErrors.NewMissingFieldError(s.name, name, "plugin"))
			case kinds != nil && !kinds.HasKind(s.name, def.Plugin):
				r.AddError(field, safErrors.NewUnknownPluginError(s.name, name, def.Plugin))
			}
		}
	}

	used := map[string]map[string]bool{
		SectionCollectors: {},
		SectionProcessors: {},
		SectionForwarders: {},
	}
	for _, name := range c.PipelineNames() {
		p := c.Pipelines[name]
		refs := []struct {
			key, section, ref string
			defs              map[string]*PluginConfig
		}{
			{"collect", SectionCollectors, p.Collect, c.Collectors},
			{"process", SectionProcessors, p.Process, c.Processors},
			{"forward", SectionForwarders, p.Forward, c.Forwarders},
		}
		for _, ref := range refs {
			field := SectionPipelines + "." + name + "." + ref.key
			if ref.ref == "" {
				r.AddError(field, safErrors.NewMissingFieldError(SectionPipelines, name, ref.key))
				continue
			}
			if _, ok := ref.defs[ref.ref]; !ok {
				r.AddError(field, fmt.Errorf("%w: %s references undefined %s %q",
					safErrors.ErrConfigInvalid, field, strings.TrimSuffix(ref.section, "s"), ref.ref))
				continue
			}
			used[ref.section][ref.ref] = true
		}
	}

	if len(c.Pipelines) == 0 {
		r.AddWarning(SectionPipelines, "no pipelines defined")
	}
	for _, s := range sections {
		for _, name := range sortedKeys(s.defs) {
			if !used[s.name][name] {
				r.AddWarning(s.name+"."+name, "defined but not used by any pipeline")
			}
		}
	}
	return r
}
