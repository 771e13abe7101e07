package main

import (
	"fmt"
	"os"

	"github.com/lintang-b-s/tm-search/cmd/tm/commands"
)

func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
