package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

func newKeygenCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Print a random hex key for TESSERA_CLAIM_KEY_HEX or TESSERA_TOKEN_HMAC_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if size < 32 || size > 128 {
				return fmt.Errorf("keygen: --bytes must be between 32 and 128")
			}
			b := make([]byte, size)
			if _, err := rand.Read(b); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
			return err
		},
	}
	cmd.Flags().IntVar(&size, "bytes", 32, "key length in bytes")
	return cmd
}
