package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "tessera",
		Short:         "Opaque session tokens with a signed-claim fast path",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadEnvFile(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading TESSERA_* variables (missing file is ignored)")

	root.AddCommand(
		newServeCmd(),
		newKeygenCmd(),
		newTokenCmd(),
		newPasswordCmd(),
	)
	return root
}

// loadEnvFile loads a dotenv file without overriding variables already set.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
