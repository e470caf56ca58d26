package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/drive-clone/api/src/config"
)

var rootCMD = &cobra.Command{
	Use:          "drive-api",
	Short:        "drive-api",
	Long:         `file drive API: hierarchical entries, quota accounting and sessions`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
}

// initialize loads the configuration named by --config and builds the logger
func initialize(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("read config flag: %w", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, newLogger(cfg.LogLevel), nil
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("level", level).Warn("Unknown LOG_LEVEL, using info")
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func init() {
	rootCMD.PersistentFlags().StringP("config", "c", "", "optional YAML config file; environment variables take precedence")
}

// Execute runs the root command
func Execute() {
	if err := rootCMD.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
