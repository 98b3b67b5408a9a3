package main

import (
	"errors"
	"fmt"

	"github.com/911interpreters/portal/internal/auth"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in to the portal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		password, err := promptPassword("Password")
		if err != nil {
			return err
		}

		sess, err := a.auth.Login(cmd.Context(), args[0], password)
		if err != nil {
			var mfa *auth.ErrMFARequired
			if errors.As(err, &mfa) {
				color.Yellow("Multi-factor authentication required.")
				fmt.Printf("Run: portal mfa setup --session %s\n", mfa.Session)
				return nil
			}
			return err
		}

		color.Green("Signed in as %s (%s)", sess.DisplayName, sess.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.auth.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
