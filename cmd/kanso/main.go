package main

import (
	"os"

	"github.com/comitanigiacomo/kanso-tally/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
