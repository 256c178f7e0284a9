package cmd

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an RSA signing key pair",
	Long: `Generates a 2048-bit RSA key pair and writes it as two PEM files,
<kid>.pem (PKCS#8 private key) and <kid>.pub.pem (PKIX public key),
ready to be referenced from the server's key configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kid, _ := cmd.Flags().GetString("kid")
		outDir, _ := cmd.Flags().GetString("out-dir")
		if kid == "" {
			return errors.New("--kid is required")
		}

		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}

		privPath := filepath.Join(outDir, kid+".pem")
		pubPath := filepath.Join(outDir, kid+".pub.pem")

		privDER, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			return fmt.Errorf("failed to encode private key: %w", err)
		}
		if err := writePEM(privPath, "PRIVATE KEY", privDER, 0o600); err != nil {
			return err
		}

		pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		if err != nil {
			return fmt.Errorf("failed to encode public key: %w", err)
		}
		if err := writePEM(pubPath, "PUBLIC KEY", pubDER, 0o644); err != nil {
			return err
		}

		log.Info().
			Str("kid", kid).
			Str("private", privPath).
			Str("public", pubPath).
			Msg("key pair written")
		return nil
	},
}

func writePEM(path, blockType string, der []byte, mode os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func init() {
	keygenCmd.Flags().String("kid", "", "key identifier, also used as the file name stem")
	keygenCmd.Flags().String("out-dir", ".", "directory the PEM files are written to")
	rootCmd.AddCommand(keygenCmd)
}
