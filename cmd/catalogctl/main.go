package main

import (
	"os"

	"bookcatalog/cmd/catalogctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
