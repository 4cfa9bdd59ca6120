package main

import (
	"os"

	"github.com/cleanmap/cleanmap/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
