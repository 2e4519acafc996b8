package main

import (
	"os"

	"github.com/kfadel/gridops/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
