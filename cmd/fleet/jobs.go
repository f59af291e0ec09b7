package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fleetline/internal/app"
	"fleetline/internal/domain"
	"fleetline/internal/fleet"
)

const routeJobs = "jobs"

func jobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "job",
		Aliases: []string{"jobs"},
		Short:   "List and manage maintenance jobs",
	}
	cmd.AddCommand(jobListCmd())
	cmd.AddCommand(jobAddCmd())
	cmd.AddCommand(jobUpdateCmd())
	cmd.AddCommand(jobCompleteCmd())
	cmd.AddCommand(jobDeleteCmd())
	return cmd
}

type jobFlags struct {
	componentID, shipID, typ, priority, status, engineer string
	scheduled, completed, title, description             string
	hours                                                float64
}

func (f *jobFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.componentID, "component", "", "component id")
	cmd.Flags().StringVar(&f.shipID, "ship", "", "ship id")
	cmd.Flags().StringVar(&f.typ, "type", string(domain.JobInspection), "Inspection|Repair|Replacement|Routine Maintenance")
	cmd.Flags().StringVar(&f.priority, "priority", string(domain.PriorityMedium), "Low|Medium|High|Critical")
	cmd.Flags().StringVar(&f.status, "status", string(domain.JobOpen), "Open|In Progress|Completed|Cancelled")
	cmd.Flags().StringVar(&f.engineer, "engineer", "", "assigned engineer id")
	cmd.Flags().StringVar(&f.scheduled, "scheduled", "", "scheduled date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.completed, "completed", "", "completed date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.title, "title", "", "job title")
	cmd.Flags().StringVar(&f.description, "description", "", "job description")
	cmd.Flags().Float64Var(&f.hours, "hours", 0, "estimated hours")
}

func (f jobFlags) job() domain.Job {
	j := domain.Job{
		ComponentID:        f.componentID,
		ShipID:             f.shipID,
		Type:               domain.JobType(f.typ),
		Priority:           domain.Priority(f.priority),
		Status:             domain.JobStatus(f.status),
		AssignedEngineerID: f.engineer,
		ScheduledDate:      f.scheduled,
		Title:              f.title,
		Description:        f.description,
		EstimatedHours:     f.hours,
	}
	if f.completed != "" {
		j.CompletedDate = domain.Ptr(f.completed)
	}
	return j
}

func (f jobFlags) patch(cmd *cobra.Command) domain.JobPatch {
	return domain.JobPatch{
		ComponentID:        changed(cmd, "component", f.componentID),
		ShipID:             changed(cmd, "ship", f.shipID),
		Type:               changed(cmd, "type", domain.JobType(f.typ)),
		Priority:           changed(cmd, "priority", domain.Priority(f.priority)),
		Status:             changed(cmd, "status", domain.JobStatus(f.status)),
		AssignedEngineerID: changed(cmd, "engineer", f.engineer),
		ScheduledDate:      changed(cmd, "scheduled", f.scheduled),
		CompletedDate:      changed(cmd, "completed", f.completed),
		Title:              changed(cmd, "title", f.title),
		Description:        changed(cmd, "description", f.description),
		EstimatedHours:     changed(cmd, "hours", f.hours),
	}
}

// warnNoticeLost turns a lost notification after a committed job write into
// a warning on stderr.
func warnNoticeLost(err error) error {
	if !errors.Is(err, fleet.ErrNoticeNotSaved) {
		return err
	}
	fmt.Fprintln(os.Stderr, warn("warning:"), err)
	return nil
}

func jobListCmd() *cobra.Command {
	var search, status, priority, shipID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeJobs, func(ctx context.Context, a *app.App) error {
				jobs := fleet.FilterJobs(a.Store.Jobs(), search, domain.JobStatus(status), domain.Priority(priority))
				if shipID != "" {
					jobs = fleet.JobsForShip(jobs, shipID)
				}
				if viper.GetBool("json") {
					return printJSON(jobs)
				}
				tw := newTable(table.Row{"ID", "Title", "Ship", "Component", "Scheduled", "Priority", "Status"})
				for _, j := range jobs {
					tw.AppendRow(table.Row{j.ID, j.Title, j.ShipID, j.ComponentID, j.ScheduledDate, paint(string(j.Priority)), paint(string(j.Status))})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "match title or description")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&priority, "priority", "", "filter by priority")
	cmd.Flags().StringVar(&shipID, "ship", "", "filter by ship id")
	return cmd
}

func jobAddCmd() *cobra.Command {
	var f jobFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeJobs, func(ctx context.Context, a *app.App) error {
				j, err := a.Store.AddJob(ctx, f.job())
				if err = warnNoticeLost(err); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(j)
				}
				fmt.Printf("Scheduled %s (%s) for %s\n", j.Title, j.ID, j.ScheduledDate)
				return nil
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func jobUpdateCmd() *cobra.Command {
	var f jobFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeJobs, func(ctx context.Context, a *app.App) error {
				found, err := a.Store.UpdateJob(ctx, args[0], f.patch(cmd))
				if err = warnNoticeLost(err); err != nil {
					return err
				}
				return reportChange("job", args[0], "updated", found)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func jobCompleteCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a job completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeJobs, func(ctx context.Context, a *app.App) error {
				if date == "" {
					date = a.Store.Now().Format(domain.DateLayout)
				}
				found, err := a.Store.UpdateJob(ctx, args[0], domain.JobPatch{
					Status:        domain.Ptr(domain.JobCompleted),
					CompletedDate: domain.Ptr(date),
				})
				if err = warnNoticeLost(err); err != nil {
					return err
				}
				return reportChange("job", args[0], "completed", found)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "completion date (default today)")
	return cmd
}

func jobDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeJobs, func(ctx context.Context, a *app.App) error {
				found, err := a.Store.DeleteJob(ctx, args[0])
				if err != nil {
					return err
				}
				return reportChange("job", args[0], "deleted", found)
			})
		},
	}
}
