package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"memberportal/web-service/internal/auth"
	"memberportal/web-service/internal/config"
	"memberportal/web-service/internal/models"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage portal users",
	}
	cmd.AddCommand(usersListCmd(), usersSetRoleCmd(), usersCreateAdminCmd())
	return cmd
}

func withAuth(ctx context.Context, fn func(*auth.Service) error) error {
	cfg := config.Load()
	logger := newLogger(cfg)
	st, err := openStores(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer st.close()

	service, err := newAuthService(cfg, st.users, logger)
	if err != nil {
		return err
	}
	return fn(service)
}

func usersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users and their roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuth(cmd.Context(), func(service *auth.Service) error {
				users, err := service.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "USERNAME\tEMAIL\tROLE")
				for _, u := range users {
					fmt.Fprintf(w, "%s\t%s\t%s\n", u.Username, u.Email, u.Role)
				}
				return w.Flush()
			})
		},
	}
}

func usersSetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <username> <user|admin>",
		Short: "Set a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := models.Role(args[1])
			if !role.Valid() {
				return fmt.Errorf("unknown role %q", args[1])
			}
			return withAuth(cmd.Context(), func(service *auth.Service) error {
				if err := service.SetRole(cmd.Context(), args[0], role); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], role)
				return nil
			})
		},
	}
}

func usersCreateAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-admin <username> <email>",
		Short: "Create a user with the admin role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return withAuth(cmd.Context(), func(service *auth.Service) error {
				user, err := service.CreateUser(cmd.Context(), auth.SignupInput{
					Username: args[0],
					Password: password,
					Email:    args[1],
				}, models.RoleAdmin)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Username, user.UserID)
				return nil
			})
		},
	}
}

// promptPassword reads without echo from a terminal and falls back to one
// line of in for pipes.
func promptPassword(in io.Reader, w io.Writer) (string, error) {
	fmt.Fprint(w, "Enter password: ")
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprintln(w)
	return strings.TrimRight(line, "\r\n"), nil
}
