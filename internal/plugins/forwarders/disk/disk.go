// Package disk implements the "disk" forwarder: every event is appended to a file as
// one JSON object per line.
package disk

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/netxfw/saf/internal/metrics"
	"github.com/netxfw/saf/internal/utils/fileutil"
	"github.com/netxfw/saf/internal/utils/retry"
	safErrors "github.com/netxfw/saf/pkg/errors"
	"github.com/netxfw/saf/pkg/sdk"
)

// Kind is the plugin name used in configuration.
const Kind = "disk"

var errClosed = errors.New("forwarder closed")

// Config is the forwarder's configuration section.
// Config 是转发器的配置段。
type Config struct {
	// Path is the output directory, created on first write.
	// Path 是输出目录，首次写入时创建。
	Path     string `yaml:"path"`
	Filename string `yaml:"filename"`
	// Sync calls fsync after each record. Defaults to true.
	// Sync: 每条记录后调用 fsync，默认为 true。
	Sync  *bool        `yaml:"sync"`
	Retry retry.Config `yaml:"retry"`
}

// pathLocks serializes writers that share an output file.
var pathLocks sync.Map // map[string]*sync.Mutex

func lockFor(path string) *sync.Mutex {
	mu, _ := pathLocks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Forwarder appends JSON lines to one file.
// Forwarder 向一个文件追加 JSON 行。
type Forwarder struct {
	name  string
	path  string
	sync  bool
	retry retry.Config
	log   sdk.Logger

	shared *sync.Mutex

	mu     sync.Mutex
	file   *os.File
	closed bool
}

// New builds a disk forwarder. The file is not opened until the first event.
// New 构建磁盘转发器。文件在第一个事件到来时才打开。
func New(pctx *sdk.PluginContext) (*Forwarder, error) {
	var cfg Config
	if err := pctx.Config.Decode(&cfg); err != nil {
		return nil, safErrors.NewConfigError("forwarders."+pctx.Name, err)
	}
	if cfg.Path == "" {
		return nil, safErrors.NewMissingFieldError("forwarders", pctx.Name, "path")
	}
	if cfg.Filename == "" {
		return nil, safErrors.NewMissingFieldError("forwarders", pctx.Name, "filename")
	}
	if filepath.Base(cfg.Filename) != cfg.Filename {
		return nil, safErrors.NewConfigError("forwarders."+pctx.Name+".filename", cfg.Filename)
	}

	path, err := filepath.Abs(filepath.Join(cfg.Path, cfg.Filename))
	if err != nil {
		return nil, safErrors.NewConfigError("forwarders."+pctx.Name+".path", cfg.Path)
	}

	return &Forwarder{
		name:   pctx.Name,
		path:   path,
		sync:   cfg.Sync == nil || *cfg.Sync,
		retry:  cfg.Retry.Normalize(),
		log:    pctx.Logger,
		shared: lockFor(path),
	}, nil
}

// Factory adapts New to the plugin registry.
func Factory(pctx *sdk.PluginContext) (sdk.Forwarder, error) {
	return New(pctx)
}

// Path returns the resolved output file.
func (f *Forwarder) Path() string {
	return f.path
}

// Forward writes one record. It returns once the record is written (and synced), or
// with an ErrForwardWrite error after the retry budget is spent.
// Forward 写入一条记录。记录写入（并同步）后返回，或在重试耗尽后返回 ErrForwardWrite 错误。
func (f *Forwarder) Forward(ctx context.Context, event sdk.Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return safErrors.NewForwardError(f.path, 0, err)
	}
	line = append(line, '\n')

	attempts, err := retry.Do(ctx, f.retry, func() error {
		return f.write(line)
	}, func(attempt int, err error) {
		metrics.ForwardRetries.WithLabelValues(f.name).Inc()
		f.log.Warnf("[%s] write %s failed (attempt %d/%d): %v", f.name, f.path, attempt, f.retry.MaxAttempts, err)
	})
	if err != nil {
		return safErrors.NewForwardError(f.path, attempts, err)
	}
	return nil
}

func (f *Forwarder) write(line []byte) error {
	f.shared.Lock()
	defer f.shared.Unlock()
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return errClosed
	}
	if f.file == nil {
		file, err := fileutil.OpenAppend(f.path)
		if err != nil {
			return err
		}
		f.file = file
	}

	if _, err := f.file.Write(line); err != nil {
		f.reset()
		return err
	}
	if f.sync {
		if err := f.file.Sync(); err != nil {
			f.reset()
			return err
		}
	}
	return nil
}

// reset drops the handle so the next attempt reopens the file. Caller holds f.mu.
func (f *Forwarder) reset() {
	if f.file != nil {
		_ = f.file.Close()
		f.file = nil
	}
}

// Close releases the file handle. Later writes fail.
// Close 释放文件句柄，之后的写入将失败。
func (f *Forwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
