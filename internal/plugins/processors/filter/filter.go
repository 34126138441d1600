// Package filter implements the "filter" processor. It keeps the events for which a
// boolean expr-lang expression is true and drops the rest.
package filter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	safErrors "github.com/netxfw/saf/pkg/errors"
	"github.com/netxfw/saf/pkg/sdk"
)

// Kind is the plugin name used in configuration.
const Kind = "filter"

// Config is the processor's configuration section.
// Config 是处理器的配置段。
type Config struct {
	// Expression must evaluate to a boolean, e.g. `data.Level == "WARN"`.
	// Expression 必须求值为布尔值。
	Expression string `yaml:"expression"`
}

// Env is the evaluation environment of an expression.
// Env 是表达式的求值环境。
type Env struct {
	Data      map[string]any `expr:"data"`
	Source    map[string]any `expr:"source"`
	Timestamp time.Time      `expr:"timestamp"`
}

// Has reports whether the event carries a field.
// Has 判断事件是否包含某字段。
func (e Env) Has(key string) bool {
	_, ok := e.Data[key]
	return ok
}

// Get returns a field as a string, or "" when absent.
// Get 以字符串形式返回字段值，不存在时返回 ""。
func (e Env) Get(key string) string {
	v, ok := e.Data[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Contains reports whether a field contains substr.
func (e Env) Contains(key, substr string) bool {
	return strings.Contains(e.Get(key), substr)
}

// Processor evaluates one compiled program per event.
// Processor 对每个事件执行一个已编译的程序。
type Processor struct {
	name    string
	program *vm.Program
	log     sdk.Logger
}

// New compiles the configured expression. Compile errors fail construction.
// New 编译配置的表达式，编译错误会导致构建失败。
func New(pctx *sdk.PluginContext) (*Processor, error) {
	var cfg Config
	if err := pctx.Config.Decode(&cfg); err != nil {
		return nil, safErrors.NewConfigError("processors."+pctx.Name, err)
	}
	if strings.TrimSpace(cfg.Expression) == "" {
		return nil, safErrors.NewMissingFieldError("processors", pctx.Name, "expression")
	}

	program, err := expr.Compile(cfg.Expression, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: processors.%s.expression: %v", safErrors.ErrConfigInvalid, pctx.Name, err)
	}
	return &Processor{name: pctx.Name, program: program, log: pctx.Logger}, nil
}

// Factory adapts New to the plugin registry.
func Factory(pctx *sdk.PluginContext) (sdk.Processor, error) {
	return New(pctx)
}

// Process implements sdk.Processor.
func (p *Processor) Process(ctx context.Context, event sdk.Event) ([]sdk.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	env := Env{
		Data:      event.Data.Map(),
		Source:    event.Source.Map(),
		Timestamp: event.Timestamp,
	}
	output, err := expr.Run(p.program, env)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", p.name, err)
	}
	if keep, ok := output.(bool); ok && keep {
		return []sdk.Event{event}, nil
	}
	return nil, nil
}
