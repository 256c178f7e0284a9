package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"go.pilab.hu/authcore/keyring"
)

var jwksCmd = &cobra.Command{
	Use:   "jwks",
	Short: "Render the JWKS document for a key set",
	Long: `Loads the given PEM key files and prints the JWKS document the server
would publish for them. Key arguments have the form kid=path, where the
first one names the current signing key pair (path without the .pub.pem
suffix) and the rest name retired public keys.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, _ := cmd.Flags().GetString("current")
		previous, _ := cmd.Flags().GetStringArray("previous")
		if current == "" {
			return errors.New("--current is required")
		}

		currentKid, currentStem, err := splitKeyArg(current)
		if err != nil {
			return err
		}
		previousFiles := make([]keyring.KeyFile, 0, len(previous))
		for _, p := range previous {
			kid, path, err := splitKeyArg(p)
			if err != nil {
				return err
			}
			previousFiles = append(previousFiles, keyring.KeyFile{Kid: kid, PublicPath: path})
		}

		ring, err := keyring.Load(keyring.KeyFile{
			Kid:         currentKid,
			PrivatePath: currentStem + ".pem",
			PublicPath:  currentStem + ".pub.pem",
		}, previousFiles)
		if err != nil {
			return err
		}

		doc, err := json.MarshalIndent(keyring.NewPublisher(ring).Publish(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render key set: %w", err)
		}
		cmd.Println(string(doc))
		return nil
	},
}

func splitKeyArg(arg string) (kid, path string, err error) {
	kid, path, ok := strings.Cut(arg, "=")
	if !ok || kid == "" || path == "" {
		return "", "", fmt.Errorf("key argument %q is not of the form kid=path", arg)
	}
	return kid, path, nil
}

func init() {
	jwksCmd.Flags().String("current", "", "current key as kid=<file stem>")
	jwksCmd.Flags().StringArray("previous", nil, "retired public key as kid=<pem path>, repeatable")
	rootCmd.AddCommand(jwksCmd)
}
