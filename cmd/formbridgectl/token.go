package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"leadcapture/formbridge/internal/auth"
	"leadcapture/formbridge/internal/common"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an admin bearer token",
	Long: `Token signs a manage_options token with ADMIN_TOKEN_SECRET, the same
token the host site hands to its administrators.

Example:
  formbridgectl token --subject admin --ttl 1h`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

var formIDCmd = &cobra.Command{
	Use:   "form-id",
	Short: "Generate a fresh CRM form id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), common.GenerateCRMFormID())
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "user login recorded in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	if tokenTTL <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", tokenTTL)
	}

	token, err := auth.IssueAdminToken([]byte(cfg.AdminTokenSecret), tokenSubject, tokenTTL)
	if errors.Is(err, auth.ErrMissingSecret) {
		return errors.New("ADMIN_TOKEN_SECRET is not set")
	}
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
