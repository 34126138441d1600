package plugins

import (
	"github.com/netxfw/saf/pkg/sdk"
)

// CollectorFactory builds a collector instance from its configuration.
// CollectorFactory 根据配置构建采集器实例。
type CollectorFactory func(pctx *sdk.PluginContext) (sdk.Collector, error)

// ProcessorFactory builds a processor instance from its configuration.
// ProcessorFactory 根据配置构建处理器实例。
type ProcessorFactory func(pctx *sdk.PluginContext) (sdk.Processor, error)

// ForwarderFactory builds a forwarder instance from its configuration.
// ForwarderFactory 根据配置构建转发器实例。
type ForwarderFactory func(pctx *sdk.PluginContext) (sdk.Forwarder, error)
