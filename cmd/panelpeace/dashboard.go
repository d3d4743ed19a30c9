package main

import (
	"context"

	"github.com/jonathan/panel-peace/internal/apiclient"
	"github.com/jonathan/panel-peace/internal/observability"
	"github.com/spf13/cobra"
)

var deadlineDays int

var deadlinesCmd = &cobra.Command{
	Use:   "deadlines",
	Short: "List upcoming pending deadlines",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd, func(ctx context.Context, c *apiclient.Client, p *observability.Printer) error {
			rows, err := c.UpcomingDeadlines(ctx, deadlineDays)
			if err != nil {
				return err
			}
			p.PrintDeadlines("UPCOMING DEADLINES", rows)
			return nil
		})
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show project stats, upcoming deadlines and open feedback",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd, func(ctx context.Context, c *apiclient.Client, p *observability.Printer) error {
			d, err := c.Dashboard(ctx)
			if err != nil {
				return err
			}
			p.PrintDashboard(d)
			return nil
		})
	},
}

func init() {
	deadlinesCmd.Flags().IntVarP(&deadlineDays, "days", "d", 0, "Window in days (defaults to the server setting)")
	rootCmd.AddCommand(deadlinesCmd, dashboardCmd)
}
