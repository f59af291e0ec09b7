package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fleetline/internal/app"
	"fleetline/internal/guard"
)

var errBadCredentials = errors.New("invalid email or password")

func loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a roster user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			return withApp(cmd.Context(), "", func(ctx context.Context, a *app.App) error {
				ok, err := a.Session.Login(ctx, email, password)
				if err != nil {
					return err
				}
				if !ok {
					return errBadCredentials
				}
				u, _ := a.Session.Current()
				if viper.GetBool("json") {
					return printJSON(u)
				}
				fmt.Printf("Signed in as %s (%s)\n", u.Name, paint(string(u.Role)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "roster email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), "", func(ctx context.Context, a *app.App) error {
				if err := a.Session.Logout(ctx); err != nil {
					return err
				}
				if !viper.GetBool("json") {
					fmt.Println("Signed out")
				}
				return nil
			})
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and the sections they may open",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), "", func(ctx context.Context, a *app.App) error {
				u := a.Session.User()
				if u == nil {
					return explainDenied(guard.UnauthenticatedError{From: guard.HomePath})
				}
				visible := a.Routes.Visible(u)
				if viper.GetBool("json") {
					names := make([]string, 0, len(visible))
					for _, r := range visible {
						names = append(names, r.Name)
					}
					return printJSON(map[string]any{"user": u, "routes": names})
				}
				fmt.Printf("%s <%s> %s\n", heading(u.Name), u.Email, paint(string(u.Role)))
				tw := newTable(table.Row{"Section", "Path"})
				for _, r := range visible {
					tw.AppendRow(table.Row{r.Name, r.Path})
				}
				tw.Render()
				return nil
			})
		},
	}
}
