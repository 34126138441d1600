// Package noop implements the "noop" forwarder, which discards events.
package noop

import (
	"context"

	"github.com/netxfw/saf/pkg/sdk"
)

// Kind is the plugin name used in configuration.
const Kind = "noop"

// Forwarder logs each event at debug level and drops it.
// Forwarder 以 debug 级别记录每个事件并丢弃。
type Forwarder struct {
	name string
	log  sdk.Logger
}

// Factory builds a noop forwarder.
func Factory(pctx *sdk.PluginContext) (sdk.Forwarder, error) {
	return &Forwarder{name: pctx.Name, log: pctx.Logger}, nil
}

// Forward implements sdk.Forwarder.
func (f *Forwarder) Forward(ctx context.Context, event sdk.Event) error {
	if f.log != nil {
		f.log.Debugf("[%s] discard event %s", f.name, event.ID)
	}
	return ctx.Err()
}
