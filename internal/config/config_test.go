package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	safErrors "github.com/netxfw/saf/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const referenceConfig = `
collectors:
  logs-collector:
    plugin: logs
    path: /tmp/test_log
    log_format: '<Date> <Time> <Pid> <Level> <Component>: <Content>'

processors:
  noop-processor:
    plugin: noop


forwarders:
  disk-forwarder:
    plugin: disk
    path: /tmp/dump
    filename: logs_output


pipelines:
  my-pipeline:
    collect: logs-collector
    process: noop-processor
    forward: disk-forwarder
`

// kindSet is a KindChecker backed by a fixed set
// kindSet 是基于固定集合的 KindChecker
type kindSet map[string][]string

func (k kindSet) HasKind(section, kind string) bool {
	for _, v := range k[section] {
		if v == kind {
			return true
		}
	}
	return false
}

var knownKinds = kindSet{
	SectionCollectors: {"logs"},
	SectionProcessors: {"noop"},
	SectionForwarders: {"disk"},
}

// TestParse_ReferenceConfig tests parsing of the reference configuration
// TestParse_ReferenceConfig 测试参考配置的解析
func TestParse_ReferenceConfig(t *testing.T) {
	cfg, err := Parse([]byte(referenceConfig))
	require.NoError(t, err)

	require.Contains(t, cfg.Collectors, "logs-collector")
	c := cfg.Collectors["logs-collector"]
	assert.Equal(t, "logs", c.Plugin)
	assert.Equal(t, "logs-collector", c.Name)

	var typed struct {
		Path      string `yaml:"path"`
		LogFormat string `yaml:"log_format"`
	}
	require.NoError(t, c.Decode(&typed))
	assert.Equal(t, "/tmp/test_log", typed.Path)
	assert.Equal(t, "<Date> <Time> <Pid> <Level> <Component>: <Content>", typed.LogFormat)

	p := cfg.Pipelines["my-pipeline"]
	require.NotNil(t, p)
	assert.Equal(t, "my-pipeline", p.Name)
	assert.Equal(t, "logs-collector", p.Collect)
	assert.Equal(t, "noop-processor", p.Process)
	assert.Equal(t, "disk-forwarder", p.Forward)
	assert.True(t, p.IsEnabled())

	assert.Equal(t, DefaultShutdownTimeout, cfg.Engine.ShutdownTimeout)
	assert.Equal(t, DefaultBufferSize, cfg.Engine.BufferSize)

	r := cfg.Validate(knownKinds)
	assert.True(t, r.Valid, r.String())
	assert.NoError(t, r.Err())
	assert.Empty(t, r.Warnings)
}

// TestParse_AmbientSections tests engine, logging and metrics sections
// TestParse_AmbientSections 测试 engine、logging 和 metrics 段
func TestParse_AmbientSections(t *testing.T) {
	cfg, err := Parse([]byte(`
engine:
  shutdown_timeout: 3s
  buffer_size: 16
logging:
  level: trace
metrics:
  enabled: true
  listen: "127.0.0.1:0"
pipelines:
  off:
    collect: c
    process: p
    forward: f
    enabled: false
`))
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Engine.ShutdownTimeout)
	assert.Equal(t, 16, cfg.Engine.BufferSize)
	assert.Equal(t, "trace", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Pipelines["off"].IsEnabled())
}

// TestParse_InvalidYAML tests malformed documents
// TestParse_InvalidYAML 测试格式错误的文档
func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("collectors: [unclosed"))
	assert.ErrorIs(t, err, safErrors.ErrConfigInvalid)

	_, err = Parse([]byte("collectors:\n  c: just-a-string\n"))
	assert.ErrorIs(t, err, safErrors.ErrConfigInvalid)
}

// TestValidate_ReportsAllErrors tests that every invalid definition is reported together
// TestValidate_ReportsAllErrors 测试所有无效定义被一起报告
func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg, err := Parse([]byte(`
collectors:
  bad-kind:
    plugin: beacons
  no-kind:
    path: /tmp/x
processors:
  noop-processor:
    plugin: noop
forwarders:
  disk-forwarder:
    plugin: disk
pipelines:
  a:
    collect: bad-kind
    process: noop-processor
    forward: missing-forwarder
  b:
    collect: no-kind
    forward: disk-forwarder
`))
	require.NoError(t, err)

	r := cfg.Validate(knownKinds)
	assert.False(t, r.Valid)

	fields := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{
		"collectors.bad-kind.plugin",
		"collectors.no-kind.plugin",
		"pipelines.a.forward",
		"pipelines.b.process",
	}, fields)

	err = r.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, safErrors.ErrConfigInvalid)
	assert.ErrorIs(t, err, safErrors.ErrUnknownPlugin)
	assert.ErrorIs(t, err, safErrors.ErrMissingField)
	assert.Contains(t, err.Error(), "pipelines.a.forward")
	assert.Contains(t, err.Error(), `plugin="beacons"`)
}

// TestValidate_Warnings tests non-fatal findings
// TestValidate_Warnings 测试非致命问题
func TestValidate_Warnings(t *testing.T) {
	cfg, err := Parse([]byte(`
processors:
  unused:
    plugin: noop
`))
	require.NoError(t, err)

	r := cfg.Validate(knownKinds)
	assert.True(t, r.Valid)
	assert.Len(t, r.Warnings, 2)
	assert.Contains(t, r.String(), "processors.unused")
}

// TestValidate_EngineBounds tests negative engine values
// TestValidate_EngineBounds 测试负数引擎参数
func TestValidate_EngineBounds(t *testing.T) {
	cfg := Default()
	cfg.Engine.BufferSize = -1
	cfg.Engine.ShutdownTimeout = -time.Second

	r := cfg.Validate(nil)
	assert.False(t, r.Valid)
	assert.Len(t, r.Errors, 2)
}

// TestLoad_FileAndDirectory tests path resolution
// TestLoad_FileAndDirectory 测试路径解析
func TestLoad_FileAndDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "analytics")
	require.NoError(t, os.WriteFile(file, []byte(referenceConfig), 0644))

	fromFile, err := Load(file)
	require.NoError(t, err)
	assert.Len(t, fromFile.Pipelines, 1)

	fromDir, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, fromDir.Pipelines, 1)

	_, err = Load(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, safErrors.ErrConfigNotFound)

	_, err = Load(t.TempDir())
	assert.ErrorIs(t, err, safErrors.ErrConfigNotFound)
}

// TestNewPluginConfig tests programmatic construction
// TestNewPluginConfig 测试以编程方式构建
func TestNewPluginConfig(t *testing.T) {
	pc, err := NewPluginConfig("out", "disk", map[string]interface{}{"path": "/tmp", "filename": "x"})
	require.NoError(t, err)
	assert.Equal(t, "disk", pc.Plugin)

	var typed struct {
		Plugin   string `yaml:"plugin"`
		Filename string `yaml:"filename"`
	}
	require.NoError(t, pc.Decode(&typed))
	assert.Equal(t, "disk", typed.Plugin)
	assert.Equal(t, "x", typed.Filename)

	var empty *PluginConfig
	assert.NoError(t, empty.Decode(&typed))
}

// TestWriteTemplate tests that the template parses, validates and is not overwritten
// TestWriteTemplate 测试模板可解析、可验证且不会被覆盖
func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.yaml")
	require.NoError(t, WriteTemplate(path))
	assert.Error(t, WriteTemplate(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	r := cfg.Validate(knownKinds)
	assert.True(t, r.Valid, r.String())
}
