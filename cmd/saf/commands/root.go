package commands

import (
	"fmt"
	"os"

	"github.com/netxfw/saf/internal/config"
	"github.com/netxfw/saf/internal/runtime"
	"github.com/netxfw/saf/internal/utils/logger"
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "saf",
	Short: "A config-driven log analytics pipeline engine",
	// Short: 一个配置驱动的日志分析管道引擎
	Long: `saf collects events from sources, processes them and forwards them to sinks.
Every pipeline is defined in the analytics configuration as collector -> processor -> forwarder.
saf 从数据源采集事件，处理后转发到输出端。
每条管道在分析配置中定义为 采集器 -> 处理器 -> 转发器。`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load configuration to get logging settings
		// 加载配置以获取日志设置
		logCfg := config.Default().Logging
		if cfg, err := config.Load(configPath()); err == nil {
			logCfg = cfg.Logging
		}
		if runtime.LogLevel != "" {
			logCfg.Level = runtime.LogLevel
		}
		logger.Init(logCfg)

		// Inject logger into context
		// 将 Logger 注入 Context
		ctx := logger.WithContext(cmd.Context(), logger.Get(nil))
		cmd.SetContext(ctx)
	},
}

func init() {
	// Config file path
	// 配置文件路径
	RootCmd.PersistentFlags().StringVarP(&runtime.ConfigPath, "config", "c", "", fmt.Sprintf("Path to configuration file or directory (default: %s)", config.DefaultConfigPath))

	// Log level override
	// 日志级别覆盖
	RootCmd.PersistentFlags().StringVarP(&runtime.LogLevel, "log-level", "l", "", "Log level: trace, debug, info, warn, error")

	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(validateCmd)
	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(versionCmd)

	RootCmd.CompletionOptions.DisableDefaultCmd = true
}

// configPath returns the --config value or the default.
func configPath() string {
	if runtime.ConfigPath != "" {
		return runtime.ConfigPath
	}
	return config.DefaultConfigPath
}

func Execute() {
	defer func() { _ = logger.Sync() }()
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
