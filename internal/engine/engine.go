// Package engine builds one pipeline per configured definition and runs them together.
//
// Package engine 为每个配置的定义构建一条管道并统一运行。
package engine

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/netxfw/saf/internal/config"
	"github.com/netxfw/saf/internal/metrics"
	"github.com/netxfw/saf/internal/pipeline"
	"github.com/netxfw/saf/internal/plugins"
	"github.com/netxfw/saf/internal/utils/logger"
	safErrors "github.com/netxfw/saf/pkg/errors"
	"github.com/netxfw/saf/pkg/sdk"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Option configures an Engine.
// Option 用于配置 Engine。
type Option func(*options)

type options struct {
	registry *plugins.Registry
	logger   *zap.SugaredLogger
}

// WithRegistry replaces the built-in plugin registry.
// WithRegistry 替换内置插件注册表。
func WithRegistry(r *plugins.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithLogger sets the engine logger. Plugins get named children of it.
// WithLogger 设置引擎日志记录器，插件使用其命名子记录器。
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Engine owns the running pipelines of one configuration.
// Engine 持有一份配置对应的所有运行中管道。
type Engine struct {
	cfg       *config.Config
	log       *zap.SugaredLogger
	order     []string
	pipelines map[string]*pipeline.Pipeline
	metrics   *metrics.Server

	mu       sync.Mutex
	running  bool
	stopOnce sync.Once
	stopErr  error
	done     chan struct{}
}

// New validates cfg and constructs every enabled pipeline without starting any.
// All validation and construction errors are reported together.
// New 校验 cfg 并构建所有启用的管道，但不启动。
// 所有校验和构建错误会一起报告。
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = plugins.DefaultRegistry()
	}
	if o.logger == nil {
		o.logger = logger.Get(context.Background())
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: no configuration", safErrors.ErrConfigInvalid)
	}

	res := cfg.Validate(o.registry)
	for _, w := range res.Warnings {
		o.logger.Warnf("⚠️  %s: %s", w.Field, w.Message)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		log:       o.logger,
		pipelines: map[string]*pipeline.Pipeline{},
		done:      make(chan struct{}),
	}

	built := &config.ValidationResult{Valid: true}
	var stages []interface{}
	for _, name := range cfg.PipelineNames() {
		def := cfg.Pipelines[name]
		if !def.IsEnabled() {
			e.log.Infof("Pipeline %s is disabled", name)
			continue
		}
		p, parts, ok := e.build(o.registry, def, built)
		stages = append(stages, parts...)
		if !ok {
			continue
		}
		e.order = append(e.order, name)
		e.pipelines[name] = p
	}
	if err := built.Err(); err != nil {
		closeAll(stages)
		return nil, err
	}

	if cfg.Metrics.Enabled {
		e.metrics = metrics.NewServer(cfg.Metrics.Listen, e.log)
	}
	return e, nil
}

// build constructs the three stages of one pipeline. It returns every stage it
// managed to build so they can be released on failure.
func (e *Engine) build(reg *plugins.Registry, def *config.PipelineConfig, res *config.ValidationResult) (*pipeline.Pipeline, []interface{}, bool) {
	pctx := func(name string) *sdk.PluginContext {
		return &sdk.PluginContext{
			Pipeline: def.Name,
			Logger:   e.log.Named(def.Name + "." + name),
		}
	}
	field := func(key string) string {
		return config.SectionPipelines + "." + def.Name + "." + key
	}

	var parts []interface{}
	ok := true

	collector, err := reg.NewCollector(e.cfg.Collectors[def.Collect], pctx(def.Collect))
	if err != nil {
		res.AddError(field("collect"), err)
		ok = false
	} else {
		parts = append(parts, collector)
	}
	processor, err := reg.NewProcessor(e.cfg.Processors[def.Process], pctx(def.Process))
	if err != nil {
		res.AddError(field("process"), err)
		ok = false
	} else {
		parts = append(parts, processor)
	}
	forwarder, err := reg.NewForwarder(e.cfg.Forwarders[def.Forward], pctx(def.Forward))
	if err != nil {
		res.AddError(field("forward"), err)
		ok = false
	} else {
		parts = append(parts, forwarder)
	}
	if !ok {
		return nil, parts, false
	}

	p := pipeline.New(def.Name, collector, processor, forwarder, pipeline.Options{
		BufferSize:      e.cfg.Engine.BufferSize,
		ShutdownTimeout: e.cfg.Engine.ShutdownTimeout,
		Logger:          e.log.Named(def.Name),
	})
	return p, parts, true
}

func closeAll(stages []interface{}) {
	for _, s := range stages {
		if c, ok := s.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

// Start builds an engine from cfg and runs it.
// Start 根据 cfg 构建引擎并运行。
func Start(ctx context.Context, cfg *config.Config, opts ...Option) (*Engine, error) {
	e, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := e.Run(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Stop stops e with a background context. See (*Engine).Stop.
// Stop 使用后台上下文停止 e。
func Stop(e *Engine) error {
	if e == nil {
		return nil
	}
	return e.Stop(context.Background())
}

// Run starts the metrics server, if enabled, and every pipeline.
// Run 启动指标服务器（如已启用）和所有管道。
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return fmt.Errorf("%w: engine", safErrors.ErrAlreadyStarted)
	}

	if e.metrics != nil {
		if err := e.metrics.Start(); err != nil {
			return fmt.Errorf("start metrics server on %s: %w", e.metrics.Addr(), err)
		}
	}
	for _, name := range e.order {
		if err := e.pipelines[name].Start(ctx); err != nil {
			return fmt.Errorf("start pipeline %s: %w", name, err)
		}
	}
	e.running = true
	go e.watch()

	e.log.Infof("🚀 Engine started with %d pipeline(s)", len(e.order))
	return nil
}

// watch closes done once every pipeline has stopped.
func (e *Engine) watch() {
	for _, name := range e.order {
		<-e.pipelines[name].Done()
	}
	close(e.done)
}

// Done is closed once every pipeline has stopped, for whatever reason.
// Done 在所有管道停止后关闭。
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Stop stops every pipeline concurrently, bounded by engine.shutdown_timeout.
// Later calls return the result of the first.
// Stop 并发停止所有管道，受 engine.shutdown_timeout 限制。
// 之后的调用返回第一次调用的结果。
func (e *Engine) Stop(ctx context.Context) error {
	e.stopOnce.Do(func() {
		e.stopErr = e.stop(ctx)
	})
	return e.stopErr
}

func (e *Engine) stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Engine.ShutdownTimeout)
	defer cancel()

	var g errgroup.Group
	for _, name := range e.order {
		p := e.pipelines[name]
		g.Go(func() error {
			if err := p.Stop(ctx); err != nil {
				e.log.Errorf("❌ Pipeline %s: %v", p.Name(), err)
				return err
			}
			return nil
		})
	}
	err := g.Wait()

	if e.metrics != nil {
		if mErr := e.metrics.Stop(ctx); mErr != nil && err == nil {
			err = mErr
		}
	}

	e.mu.Lock()
	wasRunning := e.running
	e.running = false
	e.mu.Unlock()
	if !wasRunning {
		// Never ran: Stop on every pipeline already settled them, release watchers.
		select {
		case <-e.done:
		default:
			close(e.done)
		}
	}

	e.log.Infof("🛑 Engine stopped")
	return err
}

// Pipelines returns the names of the pipelines the engine runs, sorted.
// Pipelines 返回引擎运行的管道名称（已排序）。
func (e *Engine) Pipelines() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Pipeline returns one pipeline by name.
// Pipeline 按名称返回管道。
func (e *Engine) Pipeline(name string) (*pipeline.Pipeline, bool) {
	p, ok := e.pipelines[name]
	return p, ok
}

// MetricsAddr returns the metrics server address, or "" when disabled.
func (e *Engine) MetricsAddr() string {
	if e.metrics == nil {
		return ""
	}
	return e.metrics.Addr()
}
