package main

import (
	"fmt"
	"os"

	"deployfreq/internal/chart"
	"deployfreq/internal/frequency"

	"github.com/spf13/cobra"
)

var (
	chartDays int
	chartOut  string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Write deploys per day as an HTML bar chart",
	RunE:  runChart,
}

func init() {
	chartCmd.Flags().IntVarP(&chartDays, "days", "d", 7, "Number of days to chart, today included")
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "deploys.html", "Output HTML file")
}

func runChart(cmd *cobra.Command, args []string) error {
	env, err := setupEnvironment()
	if err != nil {
		return err
	}

	name := targetName
	if name == "" {
		name = env.Registry.DefaultName()
	}
	target, err := env.Registry.Get(name)
	if err != nil {
		return err
	}

	buckets, err := frequency.NewAggregator(env.Resolver, target).Aggregate(cmd.Context(), chartDays)
	if err != nil {
		return fmt.Errorf("failed to aggregate deploys: %w", err)
	}

	file, err := os.Create(chartOut)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer file.Close()

	err = chart.Render(file, buckets, chart.Options{
		Title:    "Deploy frequency",
		Subtitle: fmt.Sprintf("%s, last %d days", name, chartDays),
	})
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write chart file: %w", err)
	}

	env.Logger.Info("Wrote chart", "path", chartOut, "deploys", buckets.Total())
	return nil
}
