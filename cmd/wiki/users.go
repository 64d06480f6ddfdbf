package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	userscmd "github.com/goliatone/go-wiki/internal/commands/users"
	"github.com/goliatone/go-wiki/internal/users"
)

func newUsersCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage wiki accounts",
		Long: `List, create and delete the accounts stored in users.json.

Subcommands:
  list            - List every account
  create          - Add an account
  delete          - Remove one account after confirming its password
  delete-by-role  - Remove every account carrying a role`,
	}
	cmd.AddCommand(
		newUsersListCommand(flags),
		newUsersCreateCommand(flags),
		newUsersDeleteCommand(flags),
		newUsersDeleteByRoleCommand(flags),
	)
	return cmd
}

func newUsersListCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := buildModule(cmd, flags)
			if err != nil {
				return err
			}
			defer module.Close()

			list, err := module.Users().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users found.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tROLES\tMETHOD\tACTIVE")
			for _, user := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", user.Name, strings.Join(user.Roles, ","), user.AuthenticationMethod, user.Active)
			}
			return tw.Flush()
		},
	}
}

func newUsersCreateCommand(flags *rootFlags) *cobra.Command {
	var (
		password string
		method   string
		roles    []string
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := buildModule(cmd, flags)
			if err != nil {
				return err
			}
			defer module.Close()

			if method == "" {
				method = module.Config().DefaultAuthMethod
			}
			var created users.User
			handler := userscmd.NewCreateUserHandler(module.Users(), module.Logger("wiki.commands.users"))
			err = handler.Execute(cmd.Context(), userscmd.CreateUserCommand{
				Name:     args[0],
				Password: password,
				Method:   users.AuthMethod(strings.ToLower(strings.TrimSpace(method))),
				Roles:    roles,
				Result:   &created,
			})
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", created.Name, created.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password of the new account")
	cmd.Flags().StringVar(&method, "method", "", "cleartext or hash; defaults to the configured method")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role to grant, repeatable")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUsersDeleteCommand(flags *rootFlags) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove one account after confirming its password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := buildModule(cmd, flags)
			if err != nil {
				return err
			}
			defer module.Close()

			handler := userscmd.NewDeleteUserHandler(module.Users(), module.Logger("wiki.commands.users"))
			if err := handler.Execute(cmd.Context(), userscmd.DeleteUserCommand{Name: args[0], Password: password}); err != nil {
				return fmt.Errorf("delete user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password of the account being removed")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUsersDeleteByRoleCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-by-role <role>",
		Short: "Remove every account carrying a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := buildModule(cmd, flags)
			if err != nil {
				return err
			}
			defer module.Close()

			var result userscmd.DeleteByRoleResult
			handler := userscmd.NewDeleteUsersByRoleHandler(module.Users(), module.Logger("wiki.commands.users"))
			err = handler.Execute(cmd.Context(), userscmd.DeleteUsersByRoleCommand{Role: args[0], Result: &result})
			if err != nil {
				return fmt.Errorf("delete users: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deleted %d users with role %s\n", len(result.Removed), args[0])
			for _, user := range result.Removed {
				fmt.Fprintf(out, "  %s\n", user.Name)
			}
			return nil
		},
	}
}
