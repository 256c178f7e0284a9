package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Work with access tokens",
}

var tokenInspectCmd = &cobra.Command{
	Use:   "inspect <token>",
	Short: "Decode an access token without verifying it",
	Long: `Decodes the header and claims of a JWT access token and prints them as
JSON. The signature is NOT verified; this is a debugging aid, not a
validity check.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var claims jwt.MapClaims
		token, _, err := jwt.NewParser().ParseUnverified(args[0], &claims)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenMalformed) {
				return fmt.Errorf("not a JWT: %w", err)
			}
			return err
		}

		out, err := json.MarshalIndent(map[string]any{
			"header": token.Header,
			"claims": claims,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render token: %w", err)
		}
		cmd.Println(string(out))
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenInspectCmd)
	rootCmd.AddCommand(tokenCmd)
}
