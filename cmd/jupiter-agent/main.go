package main

import (
	"os"

	"github.com/bh2smith/jupiter-agent/cmd/jupiter-agent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
