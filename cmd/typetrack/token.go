package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/typetrack/internal/api"
	"github.com/dmitrymomot/typetrack/internal/users"
	"github.com/dmitrymomot/typetrack/pkg/jwt"
)

var errMissingGitHubID = errors.New("--github-id is required")

func newTokenCmd() *cobra.Command {
	var (
		profile users.Profile
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Register a user and print an access token",
		Long:  "token upserts a user for the given GitHub identity and prints a signed bearer token for the activity API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := fromContext(cmd)
			if err != nil {
				return err
			}
			if profile.GitHubID <= 0 {
				return errMissingGitHubID
			}
			if profile.Login == "" {
				profile.Login = fmt.Sprintf("user-%d", profile.GitHubID)
			}
			if ttl <= 0 {
				ttl = cfg.JWTTTL
			}

			signer, err := jwt.NewFromString(cfg.JWTSigningKey)
			if err != nil {
				return err
			}

			pool, err := connect(cmd.Context(), cfg, log, cfg.MigrateOnStart)
			if err != nil {
				return err
			}
			defer pool.Close()

			u, err := users.NewPGRepository(pool).Upsert(cmd.Context(), profile)
			if err != nil {
				return err
			}

			token, err := api.IssueToken(signer, u, time.Now(), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	f := cmd.Flags()
	f.Int64Var(&profile.GitHubID, "github-id", 0, "GitHub user id (required)")
	f.StringVar(&profile.Login, "login", "", "GitHub login")
	f.StringVar(&profile.Name, "name", "", "display name")
	f.StringVar(&profile.Email, "email", "", "email address")
	f.StringVar(&profile.AvatarURL, "avatar-url", "", "avatar URL")
	f.DurationVar(&ttl, "ttl", 0, "token lifetime (default JWT_TTL)")
	return cmd
}
