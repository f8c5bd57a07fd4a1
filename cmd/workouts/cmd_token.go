package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"example.com/workouts/internal/auth"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		subject string
		scopes  []string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the API using JWT_SECRET and JWT_ISSUER",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.loadCfg()
			token, err := auth.Issue(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, subject, scopes, ttl, time.Now())
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "local", "token subject")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{auth.ScopeWorkoutsRead, auth.ScopeWorkoutsWrite}, "granted scopes")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
