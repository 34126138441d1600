package plugins

import (
	"fmt"
	"sort"
	"sync"

	"github.com/netxfw/saf/internal/config"
	"github.com/netxfw/saf/internal/plugins/collectors/logs"
	"github.com/netxfw/saf/internal/plugins/forwarders/disk"
	noopforwarder "github.com/netxfw/saf/internal/plugins/forwarders/noop"
	"github.com/netxfw/saf/internal/plugins/processors/filter"
	noopprocessor "github.com/netxfw/saf/internal/plugins/processors/noop"
	safErrors "github.com/netxfw/saf/pkg/errors"
	"github.com/netxfw/saf/pkg/sdk"
)

// Registry maps plugin kinds to factories, one table per section.
// Registry 将插件类型映射到工厂函数，每个配置段一张表。
type Registry struct {
	mu         sync.RWMutex
	collectors map[string]CollectorFactory
	processors map[string]ProcessorFactory
	forwarders map[string]ForwarderFactory
}

// NewRegistry returns an empty registry.
// NewRegistry 返回一个空的注册表。
func NewRegistry() *Registry {
	return &Registry{
		collectors: map[string]CollectorFactory{},
		processors: map[string]ProcessorFactory{},
		forwarders: map[string]ForwarderFactory{},
	}
}

// DefaultRegistry returns a registry with every built-in kind.
// DefaultRegistry 返回包含所有内置类型的注册表。
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterCollector(logs.Kind, logs.Factory)
	r.RegisterProcessor(noopprocessor.Kind, noopprocessor.Factory)
	r.RegisterProcessor(filter.Kind, filter.Factory)
	r.RegisterForwarder(disk.Kind, disk.Factory)
	r.RegisterForwarder(noopforwarder.Kind, noopforwarder.Factory)
	return r
}

// RegisterCollector adds or replaces a collector kind.
func (r *Registry) RegisterCollector(kind string, f CollectorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors[kind] = f
}

// RegisterProcessor adds or replaces a processor kind.
func (r *Registry) RegisterProcessor(kind string, f ProcessorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[kind] = f
}

// RegisterForwarder adds or replaces a forwarder kind.
func (r *Registry) RegisterForwarder(kind string, f ForwarderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forwarders[kind] = f
}

// HasKind implements config.KindChecker.
func (r *Registry) HasKind(section, kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch section {
	case config.SectionCollectors:
		_, ok := r.collectors[kind]
		return ok
	case config.SectionProcessors:
		_, ok := r.processors[kind]
		return ok
	case config.SectionForwarders:
		_, ok := r.forwarders[kind]
		return ok
	}
	return false
}

// Kinds lists the registered kinds of a section, sorted.
// Kinds 列出某配置段已注册的类型（已排序）。
func (r *Registry) Kinds(section string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var kinds []string
	switch section {
	case config.SectionCollectors:
		for k := range r.collectors {
			kinds = append(kinds, k)
		}
	case config.SectionProcessors:
		for k := range r.processors {
			kinds = append(kinds, k)
		}
	case config.SectionForwarders:
		for k := range r.forwarders {
			kinds = append(kinds, k)
		}
	}
	sort.Strings(kinds)
	return kinds
}

// NewCollector constructs the collector described by pc.
// NewCollector 构建 pc 描述的采集器。
func (r *Registry) NewCollector(pc *config.PluginConfig, pctx *sdk.PluginContext) (sdk.Collector, error) {
	r.mu.RLock()
	f, ok := r.collectors[pc.Plugin]
	r.mu.RUnlock()
	if !ok {
		return nil, safErrors.NewUnknownPluginError(config.SectionCollectors, pc.Name, pc.Plugin)
	}
	return build(config.SectionCollectors, pc, pctx, f)
}

// NewProcessor constructs the processor described by pc.
// NewProcessor 构建 pc 描述的处理器。
func (r *Registry) NewProcessor(pc *config.PluginConfig, pctx *sdk.PluginContext) (sdk.Processor, error) {
	r.mu.RLock()
	f, ok := r.processors[pc.Plugin]
	r.mu.RUnlock()
	if !ok {
		return nil, safErrors.NewUnknownPluginError(config.SectionProcessors, pc.Name, pc.Plugin)
	}
	return build(config.SectionProcessors, pc, pctx, f)
}

// NewForwarder constructs the forwarder described by pc.
// NewForwarder 构建 pc 描述的转发器。
func (r *Registry) NewForwarder(pc *config.PluginConfig, pctx *sdk.PluginContext) (sdk.Forwarder, error) {
	r.mu.RLock()
	f, ok := r.forwarders[pc.Plugin]
	r.mu.RUnlock()
	if !ok {
		return nil, safErrors.NewUnknownPluginError(config.SectionForwarders, pc.Name, pc.Plugin)
	}
	return build(config.SectionForwarders, pc, pctx, f)
}

// build runs a factory, turning a panic into an error.
func build[T any](section string, pc *config.PluginConfig, pctx *sdk.PluginContext, f func(*sdk.PluginContext) (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s.%s: plugin %q panicked during construction: %v", section, pc.Name, pc.Plugin, r)
		}
	}()
	pctx.Name = pc.Name
	pctx.Config = pc
	return f(pctx)
}
