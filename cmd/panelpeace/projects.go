package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/apiclient"
	"github.com/jonathan/panel-peace/internal/observability"
	"github.com/jonathan/panel-peace/internal/types"
	"github.com/spf13/cobra"
)

var (
	projectsStatus  string
	progressDone    int
	progressTotal   int
	progressPercent int
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd, func(ctx context.Context, c *apiclient.Client, p *observability.Printer) error {
			list, err := c.Projects(ctx, projectsStatus)
			if err != nil {
				return err
			}
			p.PrintProjects(list.Projects, list.Stats)
			return nil
		})
	},
}

var projectCmd = &cobra.Command{
	Use:   "project <id>",
	Short: "Show a project and its workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("project", args[0])
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c *apiclient.Client, p *observability.Printer) error {
			detail, err := c.Project(ctx, id)
			if err != nil {
				return err
			}
			p.PrintProject(detail.Project, detail.Steps)
			return nil
		})
	},
}

var projectStatusCmd = &cobra.Command{
	Use:   "status <project-id> <status>",
	Short: "Set a project's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("project", args[0])
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c *apiclient.Client, _ *observability.Printer) error {
			card, err := c.UpdateProjectStatus(ctx, id, args[1])
			if err != nil {
				return err
			}
			say(cmd.OutOrStdout(), "%s is now %s", card.Title, card.StatusStyle.Label)
			return nil
		})
	},
}

var stepProgressCmd = &cobra.Command{
	Use:   "progress <step-id>",
	Short: "Record progress on a workflow step",
	Long:  `Record progress either as a unit count (--done, optionally --total) or directly as --percent.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("step", args[0])
		if err != nil {
			return err
		}
		req, err := progressRequest(cmd)
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c *apiclient.Client, _ *observability.Printer) error {
			res, err := c.UpdateStepProgress(ctx, id, req)
			if err != nil {
				return err
			}
			say(cmd.OutOrStdout(), "%s %d of %d (%d%%), project at %d%%",
				observability.Bar(res.Step.Progress), res.Completed, res.Total, res.Step.Progress, res.ProjectProgress)
			return nil
		})
	},
}

func progressRequest(cmd *cobra.Command) (types.UpdateProgressRequest, error) {
	var req types.UpdateProgressRequest
	flags := cmd.Flags()
	done, percent := flags.Changed("done"), flags.Changed("percent")
	if done == percent {
		return req, fmt.Errorf("exactly one of --done or --percent is required")
	}
	if percent {
		req.Percent = &progressPercent
		return req, nil
	}
	req.Completed = &progressDone
	if flags.Changed("total") {
		req.Total = &progressTotal
	}
	return req, nil
}

func parseID(resource, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID %q", resource, raw)
	}
	return id, nil
}

func init() {
	projectsCmd.Flags().StringVarP(&projectsStatus, "status", "s", "", "Only list projects with this status")

	stepProgressCmd.Flags().IntVar(&progressDone, "done", 0, "Units completed")
	stepProgressCmd.Flags().IntVar(&progressTotal, "total", 0, "Total units (defaults to the project's page count)")
	stepProgressCmd.Flags().IntVar(&progressPercent, "percent", 0, "Progress percent")

	projectCmd.AddCommand(projectStatusCmd)
	rootCmd.AddCommand(projectsCmd, projectCmd, stepProgressCmd)
}
