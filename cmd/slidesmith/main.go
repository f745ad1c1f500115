// Command slidesmith is the CLI client for the slidesmith presentation service.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"slidesmith/internal/cli"
)

func main() {
	_ = godotenv.Load()
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
