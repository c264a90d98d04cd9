package main

import (
	"os"

	"github.com/couchcryptid/snf-facility-pages/cmd/snfpages/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
