// smcctl is a command line client for managing engine interface
// configuration on the management server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ad1rie1/smc-go/pkg/smc/api"
	"github.com/ad1rie1/smc-go/pkg/util"
)

var (
	flagProfile  string
	flagLogLevel string
	flagJSONLog  bool
)

func main() {
	root := &cobra.Command{
		Use:           "smcctl",
		Short:         "Manage engine interface configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagJSONLog {
				util.SetJSONFormat()
			}
			return util.SetLogLevel(flagLogLevel)
		},
	}
	root.PersistentFlags().StringVar(&flagProfile, "profile", api.DefaultProfilePath(), "path to the connection profile")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warning", "log level (debug, info, warning, error)")
	root.PersistentFlags().BoolVar(&flagJSONLog, "json-log", false, "log in JSON format")

	root.AddCommand(newLoginCmd())
	root.AddCommand(newInterfaceCmd())
	root.AddCommand(newServiceCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// connect loads the profile, opens a session and hands it to fn, logging
// out afterwards.
func connect(ctx context.Context, fn func(*api.Session) error) error {
	profile, err := api.LoadProfileFrom(flagProfile)
	if err != nil {
		return fmt.Errorf("loading profile: %w (run 'smcctl login' first)", err)
	}
	session := api.NewSession(profile)
	if err := session.Login(ctx); err != nil {
		return err
	}
	defer session.Logout(ctx)
	return fn(session)
}
