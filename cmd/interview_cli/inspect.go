package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"interview-room/internal/config"
	"interview-room/internal/domain"
	"interview-room/internal/service"
)

// inspectedToken es la vista legible de un access token.
type inspectedToken struct {
	Issuer    string             `json:"iss"`
	Identity  string             `json:"sub"`
	Name      string             `json:"name,omitempty"`
	NotBefore string             `json:"nbf,omitempty"`
	ExpiresAt string             `json:"exp,omitempty"`
	Video     *domain.VideoGrant `json:"video,omitempty"`
	Metadata  json.RawMessage    `json:"metadata,omitempty"`
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <token>",
		Short: "Verify an access token with the server credentials and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			tokens := service.NewTokenService(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, cfg.TokenTTL)

			claims, err := tokens.ParseToken(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("inspect token: %w", err)
			}

			out, err := json.MarshalIndent(describeClaims(claims), "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		},
	}
	return cmd
}

func describeClaims(claims service.AccessClaims) inspectedToken {
	view := inspectedToken{
		Issuer:   claims.Issuer,
		Identity: claims.Subject,
		Name:     claims.Name,
		Video:    claims.Video,
	}
	if claims.NotBefore != nil {
		view.NotBefore = claims.NotBefore.UTC().Format("2006-01-02T15:04:05Z")
	}
	if claims.ExpiresAt != nil {
		view.ExpiresAt = claims.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	if claims.Metadata != "" {
		if json.Valid([]byte(claims.Metadata)) {
			view.Metadata = json.RawMessage(claims.Metadata)
		} else {
			quoted, _ := json.Marshal(claims.Metadata)
			view.Metadata = quoted
		}
	}
	return view
}
