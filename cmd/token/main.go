package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"competitor_backend/internal/platform/config"
	jwtmw "competitor_backend/internal/platform/jwt"
)

func main() {
	var (
		operator string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:          "token",
		Short:        "Mint an operator JWT for the /v1 API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.Auth.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenLifetime
			}
			token, err := jwtmw.NewGenerator(cfg.Auth.JWTSecret, ttl).GenerateToken(operator)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "", "operator name stored as the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (0 = configured auth.tokenLifetime)")
	_ = cmd.MarkFlagRequired("operator")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
