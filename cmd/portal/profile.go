package main

import (
	"errors"
	"fmt"

	"github.com/911interpreters/portal/internal/api"
	"github.com/911interpreters/portal/internal/profile"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	profileFirstName string
	profileLastName  string
	profilePhone     string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and update account details",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the video account on file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		mgr := profile.NewManager(a.client, a.logger)
		acct, err := mgr.LoadAccount(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Name:  %s %s\n", acct.FirstName, acct.LastName)
		fmt.Printf("Email: %s\n", acct.Email)
		fmt.Printf("Phone: %s\n", acct.Phone)
		if acct.Shared {
			color.Yellow("This is a shared account; details are read-only.")
		}
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update contact details on the video account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		mgr := profile.NewManager(a.client, a.logger)
		err = mgr.UpdateAccount(cmd.Context(), api.VideoAccountUpdate{
			FirstName:   profileFirstName,
			LastName:    profileLastName,
			PhoneNumber: profilePhone,
		})
		if err != nil {
			if errors.Is(err, profile.ErrSharedAccount) {
				return fmt.Errorf("shared accounts cannot be edited from the portal")
			}
			return err
		}

		color.Green("Account updated.")
		return nil
	},
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileFirstName, "first-name", "", "First name")
	profileUpdateCmd.Flags().StringVar(&profileLastName, "last-name", "", "Last name")
	profileUpdateCmd.Flags().StringVar(&profilePhone, "phone", "", "Contact phone number")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	rootCmd.AddCommand(profileCmd)
}
