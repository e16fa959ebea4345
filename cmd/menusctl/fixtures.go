package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"menus-api/internal/fixtures"
)

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "Load development data",
}

var fixturesFile string

var fixturesLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load menus from a JSON file in a single batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ms, err := fixtures.LoadMenusFile(cmd.Context(), fixturesFile, a.NewMenuBatch())
		if err != nil {
			return err
		}
		log.Info("fixtures loaded", zap.String("file", fixturesFile), zap.Int("menus", len(ms)))
		fmt.Fprintf(cmd.OutOrStdout(), "loaded %d menus\n", len(ms))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fixturesCmd)
	fixturesCmd.AddCommand(fixturesLoadCmd)
	fixturesLoadCmd.Flags().StringVarP(&fixturesFile, "file", "f", "fixtures/menus.json", "JSON array of menus")
}
