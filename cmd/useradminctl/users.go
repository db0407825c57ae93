package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"useradmin/internal/client"
	intconfig "useradmin/internal/config"
	"useradmin/internal/domain/models"
	"useradmin/internal/listing"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Manage users"}
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newDeleteCmd())
	return cmd
}

// apiClient resolves the backend from flags, then the environment.
func apiClient(cmd *cobra.Command) (*client.Users, error) {
	env, err := intconfig.LoadEnv()
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		env.UsersAPIURL = v
	}
	if v, _ := cmd.Flags().GetDuration("timeout"); v > 0 {
		env.UsersAPITimeout = v
	}
	return client.NewUsers(env.UsersAPIURL, client.WithTimeout(env.UsersAPITimeout)), nil
}

func newListCmd() *cobra.Command {
	var status, search string
	var page, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users one page at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiClient(cmd)
			if err != nil {
				return err
			}
			q := listing.NewQuery(limit)
			q.SetFilter(listing.StatusKey, status)
			q.SetFilter(listing.SearchKey, search)
			q.SetPage(page, limit)

			store := listing.NewStore()
			if err := listing.NewCycle(c, store).Run(cmd.Context(), q); err != nil {
				return err
			}
			st := store.Snapshot()
			if st.Items == nil {
				st.Items = []models.User{}
			}
			format, _ := cmd.Flags().GetString("output")
			return printUsers(cmd.OutOrStdout(), format, models.UserPage{Data: st.Items, TotalUsers: st.Total}, q.Pagination)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (active|inactive)")
	cmd.Flags().StringVarP(&search, "query", "q", "", "search text")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", listing.DefaultPageSize, "page size")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := apiClient(cmd)
			if err != nil {
				return err
			}
			u, err := c.GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("output")
			return printUser(cmd.OutOrStdout(), format, u)
		},
	}
}

func userInputFlags(cmd *cobra.Command, in *models.UserInput) {
	cmd.Flags().StringVar(&in.Username, "username", "", "username")
	cmd.Flags().StringVar(&in.Name, "name", "", "first name")
	cmd.Flags().StringVar(&in.Lastname, "lastname", "", "last name")
	cmd.Flags().StringVar(&in.Status, "status", models.StatusActive, "status (active|inactive)")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")
}

func newCreateCmd() *cobra.Command {
	var in models.UserInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Username == "" || in.Password == "" {
				return fmt.Errorf("--username and --password are required")
			}
			c, err := apiClient(cmd)
			if err != nil {
				return err
			}
			u, err := c.CreateUser(cmd.Context(), in.Normalize())
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("output")
			return printUser(cmd.OutOrStdout(), format, u)
		},
	}
	userInputFlags(cmd, &in)
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var in models.UserInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := apiClient(cmd)
			if err != nil {
				return err
			}
			u, err := c.UpdateUser(cmd.Context(), id, in.Normalize())
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("output")
			return printUser(cmd.OutOrStdout(), format, u)
		},
	}
	userInputFlags(cmd, &in)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to delete user %d without --yes", id)
			}
			c, err := apiClient(cmd)
			if err != nil {
				return err
			}
			if err := c.DeleteUser(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted user %d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}
