package sdk

import (
	"context"
)

// Logger defines the logging interface for plugins.
// It abstracts the underlying logging implementation to allow flexibility.
// Logger 为插件定义日志接口。
// 它抽象了底层的日志实现，以允许灵活性。
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Decoder decodes a plugin's own configuration section into v.
// Decoder 将插件自身的配置段解码到 v 中。
type Decoder interface {
	Decode(v interface{}) error
}

// PluginContext provides the environment a plugin is constructed in.
// PluginContext 为插件的构造提供运行环境。
type PluginContext struct {
	// Name is the configured instance name (the key under collectors/processors/forwarders).
	// Name 是配置中的实例名称。
	Name string
	// Pipeline is the pipeline this instance belongs to.
	// Pipeline 是该实例所属的管道。
	Pipeline string
	// Config decodes the instance's configuration section.
	// Config 解码实例的配置段。
	Config Decoder
	// Logger is the standard logger for plugins.
	// Logger 是插件的标准日志记录器。
	Logger Logger
}

// Collector is a source stage.
// Collect emits events into out until ctx is cancelled or the source is exhausted,
// then releases its resources and returns. It must not close out.
// Collector 是数据源阶段。
// Collect 向 out 发送事件，直到 ctx 被取消或数据源耗尽，然后释放资源并返回。它不得关闭 out。
type Collector interface {
	Collect(ctx context.Context, out chan<- Event) error
}

// Processor transforms or filters events.
// It returns zero or more events per input and never mutates the input.
// Processor 转换或过滤事件。
// 每个输入返回零个或多个事件，且从不修改输入。
type Processor interface {
	Process(ctx context.Context, event Event) ([]Event, error)
}

// Forwarder is a sink stage.
// Forward returns only once the event is delivered or has definitively failed.
// Forwarder 是输出阶段。
// Forward 仅在事件投递成功或确定失败后返回。
type Forwarder interface {
	Forward(ctx context.Context, event Event) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, event Event) ([]Event, error)

func (f ProcessorFunc) Process(ctx context.Context, event Event) ([]Event, error) {
	return f(ctx, event)
}

// ForwarderFunc adapts a function to Forwarder.
type ForwarderFunc func(ctx context.Context, event Event) error

func (f ForwarderFunc) Forward(ctx context.Context, event Event) error {
	return f(ctx, event)
}
