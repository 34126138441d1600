// Package logs implements the "logs" collector: it tails a file, parses every
// line with a log format and emits one event per matching line.
package logs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/netxfw/saf/internal/format"
	"github.com/netxfw/saf/internal/metrics"
	safErrors "github.com/netxfw/saf/pkg/errors"
	"github.com/netxfw/saf/pkg/sdk"
	"github.com/nxadm/tail"
)

// Kind is the plugin name used in configuration.
const Kind = "logs"

// LogLineField holds the untouched input line in every emitted event.
// LogLineField 在每个事件中保存原始输入行。
const LogLineField = "log_line"

// Config is the collector's configuration section.
// Config 是采集器的配置段。
type Config struct {
	Path      string `yaml:"path"`
	LogFormat string `yaml:"log_format"`
	// TailPosition: "start" (default), "end", "offset"
	// 读取位置："start"（默认，从头开始），"end"（从末尾开始），"offset"（从上次记录位置开始）
	TailPosition string `yaml:"tail_position"`
	// CheckpointFile persists read offsets across restarts when set.
	// CheckpointFile: 设置后在重启之间持久化读取偏移量。
	CheckpointFile     string        `yaml:"checkpoint_file"`
	CheckpointInterval time.Duration `yaml:"checkpoint_interval"`
	// Poll uses stat polling instead of inotify.
	// Poll: 使用轮询代替 inotify。
	Poll bool `yaml:"poll"`
}

// Collector tails one file.
// Collector 跟踪一个文件。
type Collector struct {
	name       string
	cfg        Config
	pattern    *format.Pattern
	checkpoint *CheckpointManager
	log        sdk.Logger
}

// New builds a collector from its plugin context. The log format is compiled here so a
// malformed pattern fails construction.
// New 根据插件上下文构建采集器。日志格式在此编译，格式错误会导致构建失败。
func New(pctx *sdk.PluginContext) (*Collector, error) {
	var cfg Config
	if err := pctx.Config.Decode(&cfg); err != nil {
		return nil, safErrors.NewConfigError("collectors."+pctx.Name, err)
	}
	if cfg.Path == "" {
		return nil, safErrors.NewMissingFieldError("collectors", pctx.Name, "path")
	}
	if cfg.LogFormat == "" {
		return nil, safErrors.NewMissingFieldError("collectors", pctx.Name, "log_format")
	}
	switch cfg.TailPosition {
	case "":
		cfg.TailPosition = PositionStart
	case PositionStart, PositionEnd, PositionOffset:
	default:
		return nil, safErrors.NewConfigError("collectors."+pctx.Name+".tail_position", cfg.TailPosition)
	}

	pattern, err := format.Compile(cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("collectors.%s.log_format: %w", pctx.Name, err)
	}

	return &Collector{
		name:       pctx.Name,
		cfg:        cfg,
		pattern:    pattern,
		checkpoint: NewCheckpointManager(cfg.CheckpointFile, cfg.CheckpointInterval, pctx.Logger),
		log:        pctx.Logger,
	}, nil
}

// Factory adapts New to the plugin registry.
func Factory(pctx *sdk.PluginContext) (sdk.Collector, error) {
	return New(pctx)
}

// Checkpoints exposes the collector's read cursor.
func (c *Collector) Checkpoints() *CheckpointManager {
	return c.checkpoint
}

// Collect tails the file until ctx is cancelled.
// Collect 跟踪文件直到 ctx 被取消。
func (c *Collector) Collect(ctx context.Context, out chan<- sdk.Event) error {
	c.checkpoint.Start()
	defer c.checkpoint.Stop()

	location := c.checkpoint.GetOffset(c.cfg.Path, c.cfg.TailPosition)
	t, err := tail.TailFile(c.cfg.Path, tail.Config{
		Location:  location,
		Follow:    true,
		ReOpen:    true, // Handle log rotation
		MustExist: false,
		Poll:      c.cfg.Poll,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("tail %s: %w", c.cfg.Path, err)
	}
	defer t.Cleanup()
	c.log.Infof("📄 Tailing %s from %s", c.cfg.Path, c.cfg.TailPosition)

	stop := func() error {
		if err := t.Stop(); err != nil {
			c.log.Debugf("tail %s stopped: %v", c.cfg.Path, err)
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return stop()
		case line, ok := <-t.Lines:
			if !ok {
				if err := t.Err(); err != nil {
					return fmt.Errorf("tail %s: %w", c.cfg.Path, err)
				}
				return nil
			}
			if line.Err != nil {
				c.log.Warnf("Error reading %s: %v", c.cfg.Path, line.Err)
				continue
			}

			if ev, ok := c.parse(line.Text, line.Num); ok {
				select {
				case out <- ev:
				case <-ctx.Done():
					// Not delivered: the offset is left behind this line.
					return stop()
				}
			}

			// SeekInfo is the offset just past this line.
			c.checkpoint.UpdateOffset(c.cfg.Path, line.SeekInfo.Offset)
		}
	}
}

// parse turns one raw line into an event. Mismatches are recorded and dropped.
// num counts lines read since the tail was opened.
func (c *Collector) parse(raw string, num int) (sdk.Event, bool) {
	raw = strings.TrimSuffix(raw, "\r")
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return sdk.Event{}, false
	}

	data, ok := c.pattern.MatchData(trimmed)
	if !ok {
		metrics.LinesMismatched.WithLabelValues(c.name).Inc()
		c.log.Debugf("[%s] %v", c.name, safErrors.NewMismatchError(raw))
		return sdk.Event{}, false
	}

	source := sdk.NewData(
		sdk.Field{Key: "collector", Value: c.name},
		sdk.Field{Key: "path", Value: c.cfg.Path},
		sdk.Field{Key: "line", Value: num},
	)
	return sdk.NewEvent(data.With(LogLineField, raw), source), true
}
