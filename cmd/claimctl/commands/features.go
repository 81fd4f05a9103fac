package commands

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func featuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "Print the resolved whitelabel feature set",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(feats); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
