// Package pipeline runs one collector → processor → forwarder chain.
//
// The collector writes into a bounded channel that a single consumer drains, so
// events are processed and forwarded in the order they were produced.
//
// Package pipeline 运行一条 采集器 → 处理器 → 转发器 链路。
// 采集器写入有界通道，由单个消费者读取，因此事件按产生顺序处理和转发。
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/netxfw/saf/internal/metrics"
	"github.com/netxfw/saf/internal/utils/logger"
	safErrors "github.com/netxfw/saf/pkg/errors"
	"github.com/netxfw/saf/pkg/sdk"
)

// Defaults applied to zero Options fields.
const (
	DefaultBufferSize      = 1024
	DefaultShutdownTimeout = 10 * time.Second
)

// Options tunes a pipeline.
// Options 用于调整管道参数。
type Options struct {
	// BufferSize is the capacity of the collector → processor channel.
	// BufferSize 是 采集器 → 处理器 通道的容量。
	BufferSize int
	// ShutdownTimeout bounds Stop.
	// ShutdownTimeout 限制 Stop 的等待时间。
	ShutdownTimeout time.Duration
	Logger          sdk.Logger
}

// Pipeline is one running chain.
// Pipeline 是一条运行中的链路。
type Pipeline struct {
	name      string
	collector sdk.Collector
	processor sdk.Processor
	forwarder sdk.Forwarder
	opts      Options
	log       sdk.Logger

	mu            sync.Mutex
	state         State
	cancelCollect context.CancelFunc
	cancelWork    context.CancelFunc

	done     chan struct{}
	stopOnce sync.Once
}

// New assembles a pipeline in the Created state. Nothing runs until Start.
// New 组装一个处于 Created 状态的管道，Start 之前不会运行。
func New(name string, collector sdk.Collector, processor sdk.Processor, forwarder sdk.Forwarder, opts Options) *Pipeline {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		name:      name,
		collector: collector,
		processor: processor,
		forwarder: forwarder,
		opts:      opts,
		log:       log,
		state:     StateCreated,
		done:      make(chan struct{}),
	}
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return p.name
}

// State returns the current lifecycle state.
// State 返回当前的生命周期状态。
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Done is closed once the pipeline reaches Stopped.
// Done 在管道进入 Stopped 状态后关闭。
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

// Start launches the collector and the consumer. It is valid only once, from Created.
// Cancelling ctx has the same effect as Stop without waiting.
// Start 启动采集器和消费者，仅能在 Created 状态下调用一次。
// 取消 ctx 与调用 Stop 效果相同，但不等待。
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateCreated {
		return fmt.Errorf("%w: pipeline %s is %s", safErrors.ErrAlreadyStarted, p.name, p.state)
	}

	collectCtx, cancelCollect := context.WithCancel(ctx)
	// The consumer outlives the collector so it can drain; only a shutdown timeout aborts it.
	workCtx, cancelWork := context.WithCancel(context.WithoutCancel(ctx))
	p.cancelCollect = cancelCollect
	p.cancelWork = cancelWork
	p.state = StateRunning
	metrics.PipelinesRunning.Inc()

	events := make(chan sdk.Event, p.opts.BufferSize)
	go p.produce(collectCtx, events)
	go p.consume(workCtx, events)

	p.log.Infof("▶️  Pipeline %s started", p.name)
	return nil
}

// Stop stops collection, drains the events already collected and waits for the
// pipeline to reach Stopped, at most ShutdownTimeout. It may be called any number of times.
// Stop 停止采集，排空已采集的事件并等待管道进入 Stopped 状态，最多等待 ShutdownTimeout。
// 可多次调用。
func (p *Pipeline) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		switch p.state {
		case StateCreated:
			p.closeStages()
			p.state = StateStopped
			close(p.done)
		case StateRunning:
			p.state = StateStopping
			p.cancelCollect()
		}
	})

	timer := time.NewTimer(p.opts.ShutdownTimeout)
	defer timer.Stop()
	var err error
	select {
	case <-p.done:
		return nil
	case <-timer.C:
		err = safErrors.NewTimeoutError("stop pipeline " + p.name)
	case <-ctx.Done():
		err = fmt.Errorf("%w: stop pipeline %s: %v", safErrors.ErrCanceled, p.name, ctx.Err())
	}

	// Abort whatever is still in flight; the consumer counts the rest as undelivered.
	p.abort()
	p.log.Warnf("⚠️  Pipeline %s did not drain: %v", p.name, err)
	return err
}

func (p *Pipeline) abort() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelWork != nil {
		p.cancelWork()
	}
}

func (p *Pipeline) produce(ctx context.Context, out chan<- sdk.Event) {
	defer close(out)
	defer func() {
		if r := recover(); r != nil {
			metrics.StagePanics.WithLabelValues(p.name, "collect").Inc()
			p.log.Errorf("❌ Pipeline %s: collector panicked: %v", p.name, r)
		}
	}()

	err := p.collector.Collect(ctx, out)
	if err != nil && ctx.Err() == nil {
		p.log.Errorf("❌ Pipeline %s: collector failed: %v", p.name, err)
	}
}

func (p *Pipeline) consume(ctx context.Context, in <-chan sdk.Event) {
	defer p.finish()

	for ev := range in {
		metrics.EventsCollected.WithLabelValues(p.name).Inc()
		if ctx.Err() != nil {
			metrics.EventsUndelivered.WithLabelValues(p.name).Inc()
			continue
		}
		p.handle(ctx, ev)
	}
}

func (p *Pipeline) handle(ctx context.Context, ev sdk.Event) {
	outs, err := p.process(ctx, ev)
	if err != nil {
		metrics.ProcessErrors.WithLabelValues(p.name).Inc()
		p.log.Warnf("Pipeline %s: process event %s: %v", p.name, ev.ID, err)
		return
	}
	if len(outs) == 0 {
		metrics.EventsDropped.WithLabelValues(p.name).Inc()
		return
	}

	for _, out := range outs {
		if err := p.forward(ctx, out); err != nil {
			metrics.EventsUndelivered.WithLabelValues(p.name).Inc()
			p.log.Errorf("Pipeline %s: forward event %s: %v", p.name, out.ID, err)
			continue
		}
		metrics.EventsForwarded.WithLabelValues(p.name).Inc()
	}
}

func (p *Pipeline) process(ctx context.Context, ev sdk.Event) (outs []sdk.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.StagePanics.WithLabelValues(p.name, "process").Inc()
			err = fmt.Errorf("processor panicked: %v", r)
		}
	}()
	return p.processor.Process(ctx, ev)
}

func (p *Pipeline) forward(ctx context.Context, ev sdk.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.StagePanics.WithLabelValues(p.name, "forward").Inc()
			err = fmt.Errorf("forwarder panicked: %v", r)
		}
	}()
	return p.forwarder.Forward(ctx, ev)
}

// finish closes the stages and moves the pipeline to Stopped.
func (p *Pipeline) finish() {
	p.closeStages()

	p.mu.Lock()
	p.cancelCollect()
	p.cancelWork()
	p.state = StateStopped
	p.mu.Unlock()

	metrics.PipelinesRunning.Dec()
	close(p.done)
	p.log.Infof("⏹️  Pipeline %s stopped", p.name)
}

func (p *Pipeline) closeStages() {
	stages := []struct {
		name  string
		stage interface{}
	}{
		{"forwarder", p.forwarder},
		{"processor", p.processor},
	}
	for _, s := range stages {
		if c, ok := s.stage.(io.Closer); ok {
			if err := c.Close(); err != nil {
				p.log.Warnf("Pipeline %s: close %s: %v", p.name, s.name, err)
			}
		}
	}
}
