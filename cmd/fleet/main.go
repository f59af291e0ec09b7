package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"fleetline/internal/app"
	"fleetline/internal/config"
	"fleetline/internal/guard"
	"fleetline/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleetline CLI",
	Long: `Fleetline tracks ships, their components and the maintenance jobs raised against them.
- Workspace: the directory holding fleet.yml and the .fleetline store.
- Session: 'fleet login' signs one roster user in for the workspace; every command runs as that user.
- Roles: Admin manages everything; Engineers work components and jobs; Inspectors see ships, the dashboard and the calendar.
- Notifications: job changes and maintenance scans leave notifications, newest first.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("FLEET")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().String("config", "", "config file (default <workspace>/fleet.yml)")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("storage-driver", "", "storage driver override: sqlite, memory, redis, postgres")
	rootCmd.PersistentFlags().String("storage-dsn", "", "storage DSN override")
	rootCmd.PersistentFlags().String("log-level", "", "log level (default warn, serve uses config)")
	for _, name := range []string{"workspace", "config", "json", "storage-driver", "storage-dsn", "log-level"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func registerCommands() {
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(shipCmd())
	rootCmd.AddCommand(componentCmd())
	rootCmd.AddCommand(jobCmd())
	rootCmd.AddCommand(notificationCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(maintenanceCmd())
	rootCmd.AddCommand(dataCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(serveCmd())
}

// --- helpers ---

// loadConfig reads the workspace config and layers flag and FLEET_* overrides on top.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := viper.GetString("config"); path != "" {
		cfg, err = config.FromFile(path)
	} else {
		cfg, err = config.LoadOptional(viper.GetString("workspace"))
	}
	if err != nil {
		return nil, err
	}
	if v := viper.GetString("storage-driver"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := viper.GetString("storage-dsn"); v != "" {
		cfg.Storage.DSN = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, fallback string) (*zap.Logger, error) {
	level := viper.GetString("log-level")
	if level == "" {
		level = fallback
	}
	return logging.New(level, cfg.Log.JSON)
}

// withApp opens the workspace, checks route against the signed-in user when
// route is set, and runs fn.
func withApp(ctx context.Context, route string, fn func(context.Context, *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, "warn")
	if err != nil {
		return err
	}
	defer logger.Sync()
	a, err := app.Open(ctx, viper.GetString("workspace"), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	if route != "" {
		if err := a.Authorize(route); err != nil {
			return explainDenied(err)
		}
	}
	return fn(ctx, a)
}

func explainDenied(err error) error {
	var unauth guard.UnauthenticatedError
	if errors.As(err, &unauth) {
		return fmt.Errorf("%w: sign in with 'fleet login' first (requested %s)", err, unauth.From)
	}
	return err
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(header)
	return tw
}

var (
	good    = color.New(color.FgGreen).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
	bad     = color.New(color.FgRed, color.Bold).SprintFunc()
	muted   = color.New(color.Faint).SprintFunc()
	heading = color.New(color.Bold).SprintFunc()
)

// paint colours a status, priority or flag value by severity.
func paint(v string) string {
	switch v {
	case "Active", "Good", "Completed", "Low":
		return good(v)
	case "Under Maintenance", "Needs Attention", "In Progress", "Medium", "Open":
		return warn(v)
	case "Out of Service", "Critical", "High":
		return bad(v)
	case "Docked", "Cancelled":
		return muted(v)
	}
	return v
}

// changed returns &v when the flag was set on the command line.
func changed[T any](cmd *cobra.Command, name string, v T) *T {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}
