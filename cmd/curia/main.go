package main

import (
	"os"

	"github.com/curia-network/curia/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
