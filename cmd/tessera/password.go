package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tessera/cmd/security/password"
)

func newPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Password hashing helpers (not used by the session flow)",
	}
	cmd.AddCommand(newPasswordHashCmd(), newPasswordVerifyCmd())
	return cmd
}

func newPasswordHashCmd() *cobra.Command {
	var scheme, salt string

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash a password read from stdin (argon2id PHC string or scrypt hex)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := password.FromEnv()
			if err != nil {
				return err
			}
			pw, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch scheme {
			case "argon2id":
				encoded, err := cfg.Hash(pw)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, encoded)
				return err
			case "scrypt":
				if salt == "" {
					if salt, err = password.NewSalt(16); err != nil {
						return err
					}
				}
				key, err := cfg.Derive(pw, salt)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "salt=%s\nkey=%s\n", salt, key)
				return err
			default:
				return fmt.Errorf("password hash: unknown --scheme %q", scheme)
			}
		},
	}
	cmd.Flags().StringVar(&scheme, "scheme", "argon2id", "argon2id or scrypt")
	cmd.Flags().StringVar(&salt, "salt", "", "scrypt salt (random when empty)")
	return cmd
}

func newPasswordVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <phc-string>",
		Short: "Verify a password read from stdin against an argon2id PHC string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := password.FromEnv()
			if err != nil {
				return err
			}
			pw, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			ok, err := cfg.Verify(args[0], pw)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("password does not match")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
}

// readPassword reads the first line of r without its line terminator.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password: empty input")
	}
	return line, nil
}
