package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fleetline/internal/app"
	"fleetline/internal/domain"
	"fleetline/internal/fleet"
)

const routeComponents = "components"

func componentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "component",
		Aliases: []string{"components"},
		Short:   "List and manage ship components",
	}
	cmd.AddCommand(componentListCmd())
	cmd.AddCommand(componentAddCmd())
	cmd.AddCommand(componentUpdateCmd())
	cmd.AddCommand(componentDeleteCmd())
	return cmd
}

type componentFlags struct {
	shipID, name, serial, installed, last, next, status, typ string
}

func (f *componentFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.shipID, "ship", "", "ship id")
	cmd.Flags().StringVar(&f.name, "name", "", "component name")
	cmd.Flags().StringVar(&f.serial, "serial", "", "serial number")
	cmd.Flags().StringVar(&f.installed, "installed", "", "install date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.last, "last-maintenance", "", "last maintenance date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.next, "next-maintenance", "", "next maintenance date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.status, "status", string(domain.ComponentGood), "Good|Needs Attention|Critical")
	cmd.Flags().StringVar(&f.typ, "type", "", "component type")
}

func (f componentFlags) component() domain.Component {
	return domain.Component{
		ShipID:              f.shipID,
		Name:                f.name,
		SerialNumber:        f.serial,
		InstallDate:         f.installed,
		LastMaintenanceDate: f.last,
		NextMaintenanceDate: f.next,
		Status:              domain.ComponentStatus(f.status),
		Type:                f.typ,
	}
}

func (f componentFlags) patch(cmd *cobra.Command) domain.ComponentPatch {
	return domain.ComponentPatch{
		ShipID:              changed(cmd, "ship", f.shipID),
		Name:                changed(cmd, "name", f.name),
		SerialNumber:        changed(cmd, "serial", f.serial),
		InstallDate:         changed(cmd, "installed", f.installed),
		LastMaintenanceDate: changed(cmd, "last-maintenance", f.last),
		NextMaintenanceDate: changed(cmd, "next-maintenance", f.next),
		Status:              changed(cmd, "status", domain.ComponentStatus(f.status)),
		Type:                changed(cmd, "type", f.typ),
	}
}

func componentListCmd() *cobra.Command {
	var shipID, status, search string
	var overdue bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List components",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeComponents, func(ctx context.Context, a *app.App) error {
				comps := fleet.FilterComponents(a.Store.Components(), shipID, domain.ComponentStatus(status), search)
				now := a.Store.Now()
				if overdue {
					comps = fleet.OverdueComponents(comps, now)
				}
				if viper.GetBool("json") {
					return printJSON(comps)
				}
				tw := newTable(table.Row{"ID", "Ship", "Name", "Serial", "Next maintenance", "Status"})
				for _, c := range comps {
					next := c.NextMaintenanceDate
					if c.Overdue(now) {
						next = bad(next)
					}
					tw.AppendRow(table.Row{c.ID, c.ShipID, c.Name, c.SerialNumber, next, paint(string(c.Status))})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&shipID, "ship", "", "filter by ship id")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&search, "search", "", "match name or serial number")
	cmd.Flags().BoolVar(&overdue, "overdue", false, "only components past their next maintenance date")
	return cmd
}

func componentAddCmd() *cobra.Command {
	var f componentFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a component to a ship",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeComponents, func(ctx context.Context, a *app.App) error {
				c, err := a.Store.AddComponent(ctx, f.component())
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(c)
				}
				fmt.Printf("Added component %s (%s)\n", c.Name, c.ID)
				return nil
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func componentUpdateCmd() *cobra.Command {
	var f componentFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeComponents, func(ctx context.Context, a *app.App) error {
				found, err := a.Store.UpdateComponent(ctx, args[0], f.patch(cmd))
				if err != nil {
					return err
				}
				return reportChange("component", args[0], "updated", found)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func componentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a component; its jobs are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeComponents, func(ctx context.Context, a *app.App) error {
				found, err := a.Store.DeleteComponent(ctx, args[0])
				if err != nil {
					return err
				}
				return reportChange("component", args[0], "deleted", found)
			})
		},
	}
}
