package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey string

const LoggerKey = contextKey("logger")

var (
	mu           sync.RWMutex
	globalLogger *zap.SugaredLogger
)

// ParseLevel maps a level name to a zap level. "trace" is treated as debug.
// ParseLevel 将级别名称映射为 zap 级别。"trace" 视为 debug。
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace", "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a logger from configuration without touching the global logger.
// New 根据配置构建日志记录器，不修改全局日志记录器。
func New(cfg LoggingConfig) *zap.SugaredLogger {
	writeSyncer := zapcore.AddSync(os.Stderr)

	if cfg.Path != "" {
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			// Fall back to stderr if the directory can't be created
			// 如果无法创建目录，则输出到 stderr
			l := zap.NewExample().Sugar()
			l.Warnf("[WARN]  Failed to create log directory: %v", err)
		} else {
			rotator := &lumberjack.Logger{
				Filename:   cfg.Path,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			}
			writeSyncer = zapcore.AddSync(rotator)
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	core := zapcore.NewCore(encoder, writeSyncer, ParseLevel(cfg.Level))
	return zap.New(core, zap.AddCaller()).Sugar()
}

// Init initializes the global logger based on configuration.
// Init 根据配置初始化全局日志记录器。
func Init(cfg LoggingConfig) {
	l := New(cfg)

	mu.Lock()
	globalLogger = l
	mu.Unlock()

	l.Debugf("[LOG] Logging initialized (Level: %s, Path: %s)", ParseLevel(cfg.Level), cfg.Path)
}

// Sync flushes any buffered log entries.
// Sync 刷新所有缓存的日志条目。
func Sync() error {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l != nil {
		return l.Sync()
	}
	return nil
}

// Get returns the logger from context or global logger
// Get 从 Context 或全局日志记录器返回 Logger。
func Get(ctx context.Context) *zap.SugaredLogger {
	if ctx != nil {
		if logger, ok := ctx.Value(LoggerKey).(*zap.SugaredLogger); ok {
			return logger
		}
	}
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l == nil {
		// Fallback to basic stderr logger if not initialized
		dev, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewExample().Sugar()
		}
		return dev.Sugar()
	}
	return l
}

// WithContext adds logger to context
// WithContext 将 Logger 添加到 Context。
func WithContext(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
