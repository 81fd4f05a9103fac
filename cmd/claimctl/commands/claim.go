package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitcoinco/grant-claims/internal/claims"
	"github.com/gitcoinco/grant-claims/internal/grants"
	"github.com/gitcoinco/grant-claims/internal/wizard"
)

var newProvider = func() claims.Provider { return claims.NewMockProvider(nil) }

type claimOptions struct {
	uuid     string
	title    string
	wallet   string
	delegate string
	chainID  int64
	token    wizard.Token
}

// claimCmd walks the claim wizard offline. Identity verification is taken
// as done and the claim is submitted to a dry-run claimer.
func claimCmd() *cobra.Command {
	var o claimOptions
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Rehearse the claim flow for a wallet without sending a transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClaim(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.uuid, "uuid", "", "grant id")
	f.StringVar(&o.title, "title", "Dry-run grant", "grant title")
	f.StringVar(&o.wallet, "wallet", "", "grantee wallet address")
	f.StringVar(&o.delegate, "delegate", "", "delegate address")
	f.Int64Var(&o.chainID, "chain", 0, "chain id (default the variant's first chain)")
	f.StringVar(&o.token.Address, "token-address", "", "claim token contract address")
	f.StringVar(&o.token.Name, "token-name", "Grant Token", "claim token name")
	f.StringVar(&o.token.Ticker, "ticker", "GRT", "claim token ticker")
	f.Int32Var(&o.token.Decimals, "decimals", 18, "claim token decimals")
	_ = cmd.MarkFlagRequired("uuid")
	_ = cmd.MarkFlagRequired("wallet")
	_ = cmd.MarkFlagRequired("token-address")
	return cmd
}

func runClaim(cmd *cobra.Command, o claimOptions) error {
	out := cmd.OutOrStdout()
	if o.chainID == 0 && len(feats.ChainIDs) > 0 {
		o.chainID = feats.ChainIDs[0]
	}
	if !feats.SupportsChain(o.chainID) {
		return fmt.Errorf("%s is not deployed on chain %d", feats.AppName, o.chainID)
	}

	claim, err := newProvider().Lookup(cmd.Context(), o.uuid, o.wallet)
	if err != nil {
		return err
	}
	if !claim.CanClaim {
		fmt.Fprintf(out, "%s has nothing to claim for grant %s\n", o.wallet, o.uuid)
		return nil
	}
	amount, err := claims.FormatTokenAmount(claim.Amount, o.token.Decimals, o.token.Ticker)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "eligible for %s\n", amount)

	row := grants.Row{UUID: o.uuid, Title: o.title, Address: o.wallet}
	w := wizard.New(feats, wizard.NewGrant(row, claim, o.chainID, &o.token))
	if err := w.SetStatus(wizard.StepKYC, wizard.StatusCompleted); err != nil {
		return err
	}
	if err := w.AppointDelegate(o.delegate); err != nil {
		return err
	}

	form, err := w.ClaimForm()
	if err != nil {
		return err
	}
	now := time.Now()
	fmt.Fprintf(out, "button: %s\n", form.ButtonLabel(now, o.chainID))

	n, err := w.Claim(cmd.Context(), wizard.DryRunClaimer{}, now, o.chainID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s\n", n.Title, n.Description)
	if n.Failed() {
		return errors.New(n.Description)
	}

	c, err := form.Confirmation()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "tx: %s\n", c.ExplorerURL)
	if c.SecondButtonText != "" {
		fmt.Fprintf(out, "%s: %s\n", c.SecondButtonText, c.SecondButtonLink)
	}
	return nil
}
