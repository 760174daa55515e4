package main

import (
	"os"

	"github.com/7h3v01c3/PhishBait/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
