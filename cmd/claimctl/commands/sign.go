package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/gitcoinco/grant-claims/internal/session"
)

const signerKeyEnv = "CLAIM_SIGNER_PK"

func signCmd() *cobra.Command {
	var (
		domain  string
		address string
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print a sign-in message, signed when " + signerKeyEnv + " is set",
		RunE: func(cmd *cobra.Command, args []string) error {
			pk := strings.TrimPrefix(strings.TrimSpace(os.Getenv(signerKeyEnv)), "0x")
			if pk == "" {
				if !common.IsHexAddress(address) {
					return errors.New("--address is required without " + signerKeyEnv)
				}
				msg := session.Message(domain, common.HexToAddress(address).Hex(), time.Now())
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			}

			key, err := crypto.HexToECDSA(pk)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", signerKeyEnv, err)
			}
			signer := crypto.PubkeyToAddress(key.PublicKey)
			if address != "" && !strings.EqualFold(address, signer.Hex()) {
				return fmt.Errorf("--address %s does not match signer %s", address, signer.Hex())
			}

			msg := session.Message(domain, signer.Hex(), time.Now())
			sig, err := crypto.Sign(accounts.TextHash([]byte(msg)), key)
			if err != nil {
				return fmt.Errorf("sign: %w", err)
			}
			sig[crypto.RecoveryIDOffset] += 27

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "=== message ===")
			fmt.Fprintln(out, msg)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "address=%s\n", signer.Hex())
			fmt.Fprintf(out, "signature=%s\n", hexutil.Encode(sig))
			return nil
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "localhost", "domain named in the message")
	cmd.Flags().StringVar(&address, "address", "", "wallet address to sign in as")
	return cmd
}
