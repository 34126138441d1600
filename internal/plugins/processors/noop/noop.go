// Package noop implements the "noop" processor, which passes every event through unchanged.
package noop

import (
	"context"

	"github.com/netxfw/saf/pkg/sdk"
)

// Kind is the plugin name used in configuration.
const Kind = "noop"

// Processor returns its input as the only output.
// Processor 将输入作为唯一输出返回。
type Processor struct{}

// Factory builds a noop processor. The configuration section carries no options.
func Factory(_ *sdk.PluginContext) (sdk.Processor, error) {
	return Processor{}, nil
}

// Process implements sdk.Processor.
func (Processor) Process(ctx context.Context, event sdk.Event) ([]sdk.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []sdk.Event{event}, nil
}
