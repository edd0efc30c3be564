package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kayz/muse/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write a starter config file",
	Long:  "Writes the default configuration to .muse.yaml next to the executable, unless one already exists.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ConfigPath()
		if cfgPath != "" {
			path = cfgPath
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}
		if err := config.DefaultConfig().SaveToPath(path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
