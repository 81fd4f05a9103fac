package main

import (
	"os"

	"github.com/gitcoinco/grant-claims/cmd/claimctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
