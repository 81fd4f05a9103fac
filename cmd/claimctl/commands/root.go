// Package commands implements claimctl, the operator CLI for the claim
// service.
package commands

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/gitcoinco/grant-claims/internal/config"
	"github.com/gitcoinco/grant-claims/internal/features"
)

var (
	cfgPath    string
	whitelabel string

	cfg   config.Config
	feats features.Features
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "claimctl",
		Short:        "Inspect the grant directory and rehearse claims",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadFile(cfgPath)
			if err != nil {
				log.Printf("warning: config file: %v, using defaults", err)
				cfg = config.Default()
			}
			if err := cfg.ApplyEnv(); err != nil {
				return err
			}
			if whitelabel != "" {
				cfg.Whitelabel = whitelabel
			}
			feats, err = features.Resolve(cfg.Whitelabel)
			return err
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to config file")
	root.PersistentFlags().StringVarP(&whitelabel, "whitelabel", "w", "", "whitelabel variant (default from config or WHITELABEL_ENV)")

	root.AddCommand(grantsCmd(), featuresCmd(), signCmd(), claimCmd())
	return root
}
