package main

import (
	"os"

	"github.com/msto63/pnc/cmd/pnc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
