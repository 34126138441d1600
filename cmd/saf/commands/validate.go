package commands

import (
	"fmt"

	"github.com/netxfw/saf/internal/config"
	"github.com/netxfw/saf/internal/engine"
	"github.com/netxfw/saf/internal/plugins"
	"github.com/netxfw/saf/internal/utils/logger"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration without running it",
	// Short: 校验配置但不运行
	Long: `Validate checks plugin kinds and pipeline references, then builds every plugin
so that malformed log formats and missing fields are reported too.
validate 检查插件类型和管道引用，然后构建所有插件，以便同时报告格式错误和缺失字段。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		path := configPath()

		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		res := cfg.Validate(plugins.DefaultRegistry())
		fmt.Fprint(out, res.String())
		if err := res.Err(); err != nil {
			return err
		}

		// Build without starting to surface plugin construction errors
		// 构建但不启动，以发现插件构建错误
		e, err := engine.New(cfg, engine.WithLogger(logger.Nop()))
		if err != nil {
			return err
		}
		if err := engine.Stop(e); err != nil {
			return err
		}

		fmt.Fprintf(out, "✅ Configuration %s is valid (%d pipeline(s))\n", path, len(e.Pipelines()))
		return nil
	},
}
