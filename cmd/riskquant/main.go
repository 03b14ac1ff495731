package main

import (
	"os"

	"github.com/aristath/riskquant/cmd/riskquant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
