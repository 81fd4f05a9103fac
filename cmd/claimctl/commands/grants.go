package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gitcoinco/grant-claims/internal/grants"
	"github.com/gitcoinco/grant-claims/internal/sheets"
)

func grantsCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "grants",
		Short: "List the grant directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := sheets.New(sheets.Config{
				APIKey:  cfg.Sheets.APIKey,
				SheetID: cfg.Sheets.SheetID,
				BaseURL: cfg.Sheets.BaseURL,
				Timeout: cfg.Sheets.Timeout,
				Retry: sheets.RetryPolicy{
					MaxAttempts:  cfg.Sheets.Retry.MaxAttempts,
					InitialDelay: cfg.Sheets.Retry.InitialDelay,
					Multiplier:   cfg.Sheets.Retry.Multiplier,
				},
			})
			rows, err := grants.NewDirectory(client, nil).List(cmd.Context())
			if err != nil {
				return err
			}
			rows = grants.Search(rows, search)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "UUID\tTITLE\tADDRESS")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.UUID, r.Title, r.Address)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d grants\n", len(rows))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive title filter")
	return cmd
}
