package main

import (
	"fmt"

	"github.com/911interpreters/portal/internal/auth"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var mfaSession string

var mfaCmd = &cobra.Command{
	Use:   "mfa",
	Short: "Manage multi-factor authentication",
}

var mfaSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Enroll an authenticator app for the current sign-in challenge",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		enr, err := a.auth.SetupMFA(cmd.Context(), mfaSession)
		if err != nil {
			return err
		}

		fmt.Println("Add this account to your authenticator app:")
		fmt.Printf("  Secret: %s\n", enr.SecretCode)
		fmt.Printf("  URI:    %s\n", enr.ProvisioningURI)
		fmt.Println()

		code, err := promptLine("Enter the 6-digit code from your app")
		if err != nil {
			return err
		}
		if !auth.VerifyCode(enr.SecretCode, code) {
			return fmt.Errorf("code does not match the enrolled secret")
		}

		color.Green("Authenticator enrolled.")
		return nil
	},
}

func init() {
	mfaSetupCmd.Flags().StringVar(&mfaSession, "session", "", "Challenge session from a login attempt")
	mfaSetupCmd.MarkFlagRequired("session")

	mfaCmd.AddCommand(mfaSetupCmd)
	rootCmd.AddCommand(mfaCmd)
}
