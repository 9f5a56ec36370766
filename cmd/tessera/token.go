package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tessera/cmd/internal/auth/session"
	"tessera/cmd/security/token"
)

func newTokenCmd() *cobra.Command {
	var count int
	var pair bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate random identifiers, or id.secret session tokens with their stored digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 || count > 1000 {
				return fmt.Errorf("token: -n must be between 1 and 1000")
			}
			hasher := token.HasherFromEnv()
			out := cmd.OutOrStdout()

			for i := 0; i < count; i++ {
				id, err := token.Generate()
				if err != nil {
					return err
				}
				if !pair {
					fmt.Fprintln(out, id)
					continue
				}
				secret, err := token.Generate()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %s\n", session.JoinToken(id, secret), hasher.DigestHex(secret))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "how many to print")
	cmd.Flags().BoolVar(&pair, "session", false, "print <id>.<secret> and the hex digest stored for it")
	return cmd
}
