package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"menus-api/internal/app"
	"menus-api/internal/core/config"
	"menus-api/internal/core/logger"
)

var (
	cfgPath string
	cfg     *config.Config
	log     *zap.Logger
	syncLog func()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "menusctl",
	Short:         "Operator tool for menus-api",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		c, err := config.LoadE(cfgPath)
		if err != nil {
			return err
		}
		cfg = c
		log, syncLog = logger.Build(logger.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON, Name: "ctl"})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if syncLog != nil {
			syncLog()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")
}

// openApp 打开数据库并组装 service
func openApp() (*app.App, error) { return app.New(cfg, log) }
