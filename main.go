package main

import (
	"os"

	"github.com/oxidecomputer/bump-omicron/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
