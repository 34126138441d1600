package config

import (
	"fmt"
	"os"

	"github.com/netxfw/saf/internal/utils/fileutil"
)

// DefaultConfigTemplate is written by 'saf init'. It defines one pipeline that parses an
// HDFS-style log and appends every event to a JSON lines file.
// DefaultConfigTemplate 由 'saf init' 写入，定义了一个解析 HDFS 风格日志并追加写入 JSON 行文件的管道。
const DefaultConfigTemplate = `# SAF Analytics Configuration / SAF 分析配置
#

# Collectors: sources that emit events / 采集器：产生事件的数据源
collectors:
  logs-collector:
    plugin: logs
    # File to tail / 要跟踪的文件
    path: /var/log/app.log
    # Log format: literal text with <Field> placeholders
    # 日志格式：字面文本与 <Field> 占位符
    log_format: '<Date> <Time> <Pid> <Level> <Component>: <Content>'
    # Where to start reading: start, end, offset / 读取起点：start、end、offset
    tail_position: start

# Processors: transform or filter events / 处理器：转换或过滤事件
processors:
  noop-processor:
    plugin: noop

# Forwarders: sinks that persist events / 转发器：持久化事件的输出
forwarders:
  disk-forwarder:
    plugin: disk
    # Output directory and file name / 输出目录和文件名
    path: /var/lib/saf
    filename: logs_output

# Pipelines: collector -> processor -> forwarder / 管道：采集器 -> 处理器 -> 转发器
pipelines:
  my-pipeline:
    collect: logs-collector
    process: noop-processor
    forward: disk-forwarder

# Engine tuning / 引擎调优
engine:
  shutdown_timeout: 10s
  buffer_size: 1024

# Logging / 日志
logging:
  level: info
  path: ""

# Prometheus metrics / Prometheus 指标
metrics:
  enabled: false
  listen: ":9464"
`

// WriteTemplate writes DefaultConfigTemplate to path unless a file already exists there.
// WriteTemplate 将 DefaultConfigTemplate 写入 path，如果文件已存在则不覆盖。
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	return fileutil.AtomicWriteFile(path, []byte(DefaultConfigTemplate), 0644)
}
