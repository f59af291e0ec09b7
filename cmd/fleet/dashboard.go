package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fleetline/internal/app"
	"fleetline/internal/domain"
	"fleetline/internal/fleet"
)

const (
	routeDashboard = "dashboard"
	routeCalendar  = "calendar"
)

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show fleet statistics and recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeDashboard, func(ctx context.Context, a *app.App) error {
				stats := a.Store.Stats()
				activity := a.Store.RecentActivity()
				if viper.GetBool("json") {
					return printJSON(map[string]any{"stats": stats, "recentActivity": activity})
				}
				tw := newTable(table.Row{"Metric", "Value"})
				tw.AppendRows([]table.Row{
					{"Ships", fmt.Sprintf("%d (%d active, %d in maintenance)", stats.TotalShips, stats.ActiveShips, stats.ShipsUnderMaintenance)},
					{"Components", fmt.Sprintf("%d (%d need attention)", stats.TotalComponents, stats.ComponentsNeedingAttention)},
					{"Jobs", fmt.Sprintf("%d (%d open, %d in progress, %d completed)", stats.TotalJobs, stats.OpenJobs, stats.InProgressJobs, stats.CompletedJobs)},
					{"High priority jobs", stats.HighPriorityJobs},
					{"Overdue maintenance", overdueCell(stats.OverdueMaintenance)},
					{"Unread notifications", stats.UnreadNotifications},
					{"Completion rate", fmt.Sprintf("%.1f%%", stats.CompletionRate)},
					{"Compliance rate", fmt.Sprintf("%.1f%%", stats.ComplianceRate)},
				})
				tw.Render()
				if len(activity) == 0 {
					return nil
				}
				fmt.Println(heading("Recent activity"))
				at := newTable(table.Row{"Date", "Kind", "Title", "Detail", "Status"})
				for _, act := range activity {
					at.AppendRow(table.Row{act.Date, act.Kind, act.Title, act.Detail, paint(act.Status)})
				}
				at.Render()
				return nil
			})
		},
	}
}

func overdueCell(n int) any {
	if n > 0 {
		return bad(n)
	}
	return good(n)
}

func calendarCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "List scheduled jobs and maintenance dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			lo, err := parseBound(from)
			if err != nil {
				return err
			}
			hi, err := parseBound(to)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), routeCalendar, func(ctx context.Context, a *app.App) error {
				events := a.Store.CalendarEvents(lo, hi)
				if viper.GetBool("json") {
					return printJSON(events)
				}
				tw := newTable(table.Row{"Date", "Kind", "Title", "Ship", "Status", "Priority"})
				for _, e := range events {
					ship := e.ShipName
					if ship == "" {
						ship = muted(e.ShipID)
					}
					tw.AppendRow(table.Row{e.Date, e.Kind, e.Title, ship, paint(e.Status), paint(e.Priority)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date (YYYY-MM-DD)")
	return cmd
}

func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD", s)
	}
	return t, nil
}

func notificationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notification",
		Aliases: []string{"notifications", "inbox"},
		Short:   "Read notifications",
	}
	cmd.AddCommand(notificationListCmd())
	cmd.AddCommand(notificationReadCmd())
	cmd.AddCommand(notificationReadAllCmd())
	return cmd
}

func notificationListCmd() *cobra.Command {
	var unread bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeDashboard, func(ctx context.Context, a *app.App) error {
				list := a.Store.Notifications()
				if unread {
					kept := list[:0]
					for _, n := range list {
						if !n.Read {
							kept = append(kept, n)
						}
					}
					list = kept
				}
				if viper.GetBool("json") {
					return printJSON(list)
				}
				tw := newTable(table.Row{"ID", "", "Type", "Title", "Message", "Created"})
				for _, n := range list {
					mark := muted("read")
					if !n.Read {
						mark = warn("new")
					}
					tw.AppendRow(table.Row{n.ID, mark, n.Type, n.Title, n.Message, n.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&unread, "unread", false, "only unread notifications")
	return cmd
}

func notificationReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeDashboard, func(ctx context.Context, a *app.App) error {
				found, err := a.Store.MarkNotificationAsRead(ctx, args[0])
				if err != nil {
					return err
				}
				return reportChange("notification", args[0], "marked read", found)
			})
		},
	}
}

func notificationReadAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeDashboard, func(ctx context.Context, a *app.App) error {
				n, err := a.Store.MarkAllNotificationsRead(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]int{"updated": n})
				}
				fmt.Printf("%d notifications marked read\n", n)
				return nil
			})
		},
	}
}

func maintenanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Maintenance schedule tools",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "scan",
		Short: "Raise a notification for each component past its maintenance date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeComponents, func(ctx context.Context, a *app.App) error {
				created, err := a.Store.ScanMaintenanceDue(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(created)
				}
				if len(created) == 0 {
					fmt.Println("No new overdue components")
					return nil
				}
				for _, n := range created {
					fmt.Println(warn(n.Message))
				}
				return nil
			})
		},
	})
	return cmd
}

func dataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Inspect and reset stored fleet data",
	}
	cmd.AddCommand(dataOrphansCmd())
	cmd.AddCommand(dataResetCmd())
	return cmd
}

func dataOrphansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "List components and jobs whose ship or component no longer exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeDashboard, func(ctx context.Context, a *app.App) error {
				o := a.Store.Orphans()
				if viper.GetBool("json") {
					return printJSON(o)
				}
				if o.Empty() {
					fmt.Println(good("No dangling references"))
					return nil
				}
				tw := newTable(table.Row{"Kind", "ID", "Name", "Ship", "Component"})
				for _, c := range o.Components {
					tw.AppendRow(table.Row{"component", c.ID, c.Name, c.ShipID, ""})
				}
				for _, j := range o.Jobs {
					tw.AppendRow(table.Row{"job", j.ID, j.Title, j.ShipID, j.ComponentID})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func dataResetCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace all fleet data with the sample fleet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("reset discards every ship, component, job and notification; pass --force to continue")
			}
			return withApp(cmd.Context(), routeShipsManage, func(ctx context.Context, a *app.App) error {
				if err := a.Store.Reset(ctx); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(fleet.ComputeStats(a.Store.Snapshot(), a.Store.Now()))
				}
				fmt.Println("Fleet data reset to the sample fleet")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "confirm the reset")
	return cmd
}
