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

const (
	routeShips       = "ships"
	routeShipsManage = "ships.manage"
)

func shipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ship",
		Aliases: []string{"ships"},
		Short:   "List and manage ships",
	}
	cmd.AddCommand(shipListCmd())
	cmd.AddCommand(shipShowCmd())
	cmd.AddCommand(shipAddCmd())
	cmd.AddCommand(shipUpdateCmd())
	cmd.AddCommand(shipDeleteCmd())
	return cmd
}

type shipFlags struct {
	name, imo, flag, status, typ, owner string
	yearBuilt                           int
	length                              float64
}

func (f *shipFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "ship name")
	cmd.Flags().StringVar(&f.imo, "imo", "", "IMO number (7 digits)")
	cmd.Flags().StringVar(&f.flag, "flag", "", "flag state")
	cmd.Flags().StringVar(&f.status, "status", string(domain.ShipActive), "Active|Under Maintenance|Docked|Out of Service")
	cmd.Flags().StringVar(&f.typ, "type", "", "vessel type")
	cmd.Flags().IntVar(&f.yearBuilt, "year-built", 0, "year built")
	cmd.Flags().Float64Var(&f.length, "length", 0, "length in metres")
	cmd.Flags().StringVar(&f.owner, "owner", "", "owner")
}

func (f shipFlags) ship() domain.Ship {
	return domain.Ship{
		Name:      f.name,
		IMO:       f.imo,
		Flag:      f.flag,
		Status:    domain.ShipStatus(f.status),
		Type:      f.typ,
		YearBuilt: f.yearBuilt,
		Length:    f.length,
		Owner:     f.owner,
	}
}

func (f shipFlags) patch(cmd *cobra.Command) domain.ShipPatch {
	return domain.ShipPatch{
		Name:      changed(cmd, "name", f.name),
		IMO:       changed(cmd, "imo", f.imo),
		Flag:      changed(cmd, "flag", f.flag),
		Status:    changed(cmd, "status", domain.ShipStatus(f.status)),
		Type:      changed(cmd, "type", f.typ),
		YearBuilt: changed(cmd, "year-built", f.yearBuilt),
		Length:    changed(cmd, "length", f.length),
		Owner:     changed(cmd, "owner", f.owner),
	}
}

func shipListCmd() *cobra.Command {
	var search, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ships",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeShips, func(ctx context.Context, a *app.App) error {
				ships := fleet.FilterShips(a.Store.Ships(), search, domain.ShipStatus(status))
				if viper.GetBool("json") {
					return printJSON(ships)
				}
				tw := newTable(table.Row{"ID", "Name", "IMO", "Flag", "Type", "Status", "Owner"})
				for _, s := range ships {
					tw.AppendRow(table.Row{s.ID, s.Name, s.IMO, s.Flag, s.Type, paint(string(s.Status)), s.Owner})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "match name, IMO or flag")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	return cmd
}

func shipShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a ship with its components and jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeShips, func(ctx context.Context, a *app.App) error {
				ship, ok := a.Store.Ship(args[0])
				if !ok {
					return fmt.Errorf("ship %s not found", args[0])
				}
				st := a.Store.Snapshot()
				comps := fleet.ComponentsForShip(st.Components, ship.ID)
				jobs := fleet.JobsForShip(st.Jobs, ship.ID)
				summary := fleet.SummarizeShip(st, ship.ID)
				if viper.GetBool("json") {
					return printJSON(map[string]any{"ship": ship, "summary": summary, "components": comps, "jobs": jobs})
				}
				fmt.Printf("%s  IMO %s  %s\n", heading(ship.Name), ship.IMO, paint(string(ship.Status)))
				fmt.Printf("%s, %s, built %d, %.0f m, owned by %s\n", ship.Type, ship.Flag, ship.YearBuilt, ship.Length, ship.Owner)
				fmt.Printf("components %d  active jobs %d  critical %d\n\n", summary.Components, summary.ActiveJobs, summary.CriticalComponents)
				if len(comps) > 0 {
					tw := newTable(table.Row{"Component", "Serial", "Next maintenance", "Status"})
					for _, c := range comps {
						tw.AppendRow(table.Row{c.Name, c.SerialNumber, c.NextMaintenanceDate, paint(string(c.Status))})
					}
					tw.Render()
				}
				if len(jobs) > 0 {
					tw := newTable(table.Row{"Job", "Scheduled", "Priority", "Status"})
					for _, j := range jobs {
						tw.AppendRow(table.Row{j.Title, j.ScheduledDate, paint(string(j.Priority)), paint(string(j.Status))})
					}
					tw.Render()
				}
				return nil
			})
		},
	}
}

func shipAddCmd() *cobra.Command {
	var f shipFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a ship",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeShipsManage, func(ctx context.Context, a *app.App) error {
				ship, err := a.Store.AddShip(ctx, f.ship())
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(ship)
				}
				fmt.Printf("Added ship %s (%s)\n", ship.Name, ship.ID)
				return nil
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func shipUpdateCmd() *cobra.Command {
	var f shipFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a ship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeShipsManage, func(ctx context.Context, a *app.App) error {
				found, err := a.Store.UpdateShip(ctx, args[0], f.patch(cmd))
				if err != nil {
					return err
				}
				return reportChange("ship", args[0], "updated", found)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func shipDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a ship; its components and jobs are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), routeShipsManage, func(ctx context.Context, a *app.App) error {
				found, err := a.Store.DeleteShip(ctx, args[0])
				if err != nil {
					return err
				}
				return reportChange("ship", args[0], "deleted", found)
			})
		},
	}
}

// reportChange prints the outcome of an update or delete. A missing id is
// reported, not treated as an error.
func reportChange(kind, id, verb string, found bool) error {
	if viper.GetBool("json") {
		return printJSON(map[string]any{"id": id, "found": found})
	}
	if !found {
		fmt.Printf("%s %s not found, nothing %s\n", kind, id, verb)
		return nil
	}
	fmt.Printf("%s %s %s\n", kind, id, verb)
	return nil
}
