package main

import (
	"os"

	"vocab-sprint/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
