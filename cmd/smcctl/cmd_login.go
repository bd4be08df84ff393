package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ad1rie1/smc-go/pkg/smc/api"
)

func newLoginCmd() *cobra.Command {
	var apiVersion string
	var verify bool

	cmd := &cobra.Command{
		Use:   "login <url>",
		Short: "Store a connection profile and verify it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := promptAPIKey()
			if err != nil {
				return err
			}
			profile := &api.Profile{
				URL:        args[0],
				APIKey:     key,
				APIVersion: apiVersion,
				Verify:     verify,
			}
			session := api.NewSession(profile)
			if err := session.Login(cmd.Context()); err != nil {
				return err
			}
			session.Logout(cmd.Context())

			if err := profile.SaveTo(flagProfile); err != nil {
				return fmt.Errorf("saving profile: %w", err)
			}
			fmt.Printf("profile saved to %s\n", flagProfile)
			return nil
		},
	}
	cmd.Flags().StringVar(&apiVersion, "api-version", "", "API version (default 6.4)")
	cmd.Flags().BoolVar(&verify, "verify", false, "verify the server TLS certificate")
	return cmd
}

func promptAPIKey() (string, error) {
	fmt.Fprint(os.Stderr, "API key: ")
	if term.IsTerminal(int(os.Stdin.Fd())) {
		key, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(key)), nil
	}
	var key string
	if _, err := fmt.Fscanln(os.Stdin, &key); err != nil {
		return "", err
	}
	return strings.TrimSpace(key), nil
}
