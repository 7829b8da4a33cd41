package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/freightplan/freightplan/app"
	"github.com/freightplan/freightplan/config"
)

var (
	inputPath  string
	outputPath string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Consolidate orders from a CSV file and route them onto trucks",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&inputPath, "input", "i", "", "input CSV file of orders")
	planCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output JSON file (stdout when empty)")
	if err := planCmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	return svc.RunFiles(ctx, inputPath, outputPath)
}
