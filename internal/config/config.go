package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/netxfw/saf/internal/utils/fileutil"
	"github.com/netxfw/saf/internal/utils/logger"
	safErrors "github.com/netxfw/saf/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Section names as they appear in the configuration file.
// 配置文件中的段名称。
const (
	SectionCollectors = "collectors"
	SectionProcessors = "processors"
	SectionForwarders = "forwarders"
	SectionPipelines  = "pipelines"
)

// Config is the analytics configuration loaded once at engine start.
// Config 是在引擎启动时加载一次的分析配置。
type Config struct {
	Collectors map[string]*PluginConfig   `yaml:"collectors"`
	Processors map[string]*PluginConfig   `yaml:"processors"`
	Forwarders map[string]*PluginConfig   `yaml:"forwarders"`
	Pipelines  map[string]*PipelineConfig `yaml:"pipelines"`

	Engine  EngineConfig         `yaml:"engine"`
	Logging logger.LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig        `yaml:"metrics"`
}

// EngineConfig holds engine-wide tuning.
// EngineConfig 保存引擎范围的调优参数。
type EngineConfig struct {
	// ShutdownTimeout bounds how long a pipeline may take to drain on stop.
	// ShutdownTimeout: 管道停止时排空的最长时间。
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// BufferSize is the channel capacity between collector and processor.
	// BufferSize: 采集器与处理器之间的通道容量。
	BufferSize int `yaml:"buffer_size"`
}

// MetricsConfig controls the Prometheus endpoint.
// MetricsConfig 控制 Prometheus 接口。
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// PipelineConfig binds one collector, one processor and one forwarder by name.
// PipelineConfig 通过名称绑定一个采集器、一个处理器和一个转发器。
type PipelineConfig struct {
	Name    string `yaml:"-"`
	Collect string `yaml:"collect"`
	Process string `yaml:"process"`
	Forward string `yaml:"forward"`
	// Enabled defaults to true when omitted.
	// Enabled: 省略时默认为 true。
	Enabled *bool `yaml:"enabled"`
}

// IsEnabled reports whether the pipeline should be started.
func (p *PipelineConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// Defaults used when the configuration leaves a value unset.
// 配置未设置时使用的默认值。
const (
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBufferSize      = 1024
)

// DefaultConfigPath is used when no --config flag is given.
// DefaultConfigPath 是未指定 --config 时使用的路径。
const DefaultConfigPath = "/etc/saf"

// DefaultFileNames are looked up, in order, when the config path is a directory.
// DefaultFileNames 在配置路径为目录时按顺序查找。
var DefaultFileNames = []string{"analytics", "analytics.yaml", "analytics.yml"}

// Default returns a configuration with every default applied and no pipelines.
// Default 返回应用了所有默认值但不含管道的配置。
func Default() *Config {
	return &Config{
		Collectors: map[string]*PluginConfig{},
		Processors: map[string]*PluginConfig{},
		Forwarders: map[string]*PluginConfig{},
		Pipelines:  map[string]*PipelineConfig{},
		Engine: EngineConfig{
			ShutdownTimeout: DefaultShutdownTimeout,
			BufferSize:      DefaultBufferSize,
		},
		Logging: logger.LoggingConfig{
			Level:      "info",
			MaxSize:    10, // 10MB
			MaxBackups: 3,
			MaxAge:     30, // 30 days
			Compress:   true,
		},
	}
}

// ResolvePath returns the config file for path, which may be a file or a directory.
// ResolvePath 返回 path 对应的配置文件，path 可以是文件或目录。
func ResolvePath(path string) (string, error) {
	safePath := filepath.Clean(path) // Sanitize path to prevent directory traversal
	info, err := os.Stat(safePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", safErrors.ErrConfigNotFound, safePath)
		}
		return "", err
	}
	if !info.IsDir() {
		return safePath, nil
	}
	if p, ok := fileutil.FirstExisting(safePath, DefaultFileNames...); ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: no %v in %s", safErrors.ErrConfigNotFound, DefaultFileNames, safePath)
}

// Load reads and parses the configuration at path. It does not check plugin kinds; see Validate.
// Load 读取并解析 path 处的配置。它不检查插件类型，参见 Validate。
func Load(path string) (*Config, error) {
	file, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file) // #nosec G304 // path is sanitized in ResolvePath
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document on top of the defaults.
// Parse 在默认值之上解码 YAML 文档。
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", safErrors.ErrConfigInvalid, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Collectors == nil {
		c.Collectors = map[string]*PluginConfig{}
	}
	if c.Processors == nil {
		c.Processors = map[string]*PluginConfig{}
	}
	if c.Forwarders == nil {
		c.Forwarders = map[string]*PluginConfig{}
	}
	if c.Pipelines == nil {
		c.Pipelines = map[string]*PipelineConfig{}
	}
	for _, section := range []map[string]*PluginConfig{c.Collectors, c.Processors, c.Forwarders} {
		for name, pc := range section {
			if pc == nil {
				pc = &PluginConfig{}
				section[name] = pc
			}
			pc.Name = name
		}
	}
	for name, pl := range c.Pipelines {
		if pl == nil {
			pl = &PipelineConfig{}
			c.Pipelines[name] = pl
		}
		pl.Name = name
	}
	if c.Engine.ShutdownTimeout == 0 {
		c.Engine.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Engine.BufferSize == 0 {
		c.Engine.BufferSize = DefaultBufferSize
	}
}

// PipelineNames returns pipeline names sorted.
// PipelineNames 返回排序后的管道名称。
func (c *Config) PipelineNames() []string {
	return sortedKeys(c.Pipelines)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
