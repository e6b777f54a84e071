// Command registryd runs the catmunch registry directory daemon: it
// mirrors a registry object repository, serves authoritative DNS and
// WHOIS lookups over it, and exposes an HTTP readiness endpoint.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/catmunchnet/registryd/internal/config"
	"github.com/catmunchnet/registryd/internal/logging"
	"github.com/catmunchnet/registryd/internal/supervisor"
)

var (
	version = "dev"
	debug   bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "registryd",
		Short: "Authoritative DNS/WHOIS directory server for a private registry",
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable development-mode logging")
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the registry and serve DNS, WHOIS, and readiness traffic",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("registryd: %w", err)
			}

			logger, err := logging.New(debug)
			if err != nil {
				return fmt.Errorf("registryd: building logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			return supervisor.Run(context.Background(), cfg, logger)
		},
	}
	config.Bind(cmd.Flags(), v)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the registryd version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}
}
