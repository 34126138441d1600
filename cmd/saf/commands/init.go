package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/netxfw/saf/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration",
	// Short: 写入默认配置
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if info, err := os.Stat(path); (err == nil && info.IsDir()) || path == config.DefaultConfigPath {
			path = filepath.Join(path, "analytics.yaml")
		}
		if err := config.WriteTemplate(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📝 Wrote default configuration to %s\n", path)
		return nil
	},
}
