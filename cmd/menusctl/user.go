package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"menus-api/internal/domain"
	"menus-api/internal/dto"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var (
	userEmail    string
	userPassword string
	userAdmin    bool
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user, optionally with ROLE_ADMIN",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := dto.UserInput{Email: userEmail, Password: userPassword}
		if userAdmin {
			in.Roles = []string{domain.RoleAdmin}
		}
		if errs := in.Normalize().Validate(); errs != nil {
			return errs
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		u, err := a.Users.Create(cmd.Context(), in, true)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %d <%s> %v\n", u.ID, u.Email, u.GetRoles())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "plain password, hashed before storing")
	userCreateCmd.Flags().BoolVar(&userAdmin, "admin", false, "grant ROLE_ADMIN")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
}
