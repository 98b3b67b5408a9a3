package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Password management",
}

var passwordChangeCmd = &cobra.Command{
	Use:   "change",
	Short: "Change the signed-in user's password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		oldPassword, err := promptPassword("Current password")
		if err != nil {
			return err
		}
		newPassword, err := promptPassword("New password")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm new password")
		if err != nil {
			return err
		}

		if err := a.auth.ChangePassword(cmd.Context(), oldPassword, newPassword, confirm); err != nil {
			return err
		}
		color.Green("Password changed.")
		return nil
	},
}

var passwordForgotCmd = &cobra.Command{
	Use:   "forgot <username>",
	Short: "Request a password reset code by email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.auth.ForgotPassword(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("If the account exists, a reset code has been emailed.")
		return nil
	},
}

var passwordResetCmd = &cobra.Command{
	Use:   "reset <username>",
	Short: "Complete a password reset with the emailed code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		otp, err := promptLine("Reset code")
		if err != nil {
			return err
		}
		newPassword, err := promptPassword("New password")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm new password")
		if err != nil {
			return err
		}

		if err := a.auth.ResetPassword(cmd.Context(), args[0], otp, newPassword, confirm); err != nil {
			return err
		}
		color.Green("Password reset.")
		return nil
	},
}

func init() {
	passwordCmd.AddCommand(passwordChangeCmd)
	passwordCmd.AddCommand(passwordForgotCmd)
	passwordCmd.AddCommand(passwordResetCmd)
	rootCmd.AddCommand(passwordCmd)
}
