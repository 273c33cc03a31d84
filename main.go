package main

import (
	"os"

	"github.com/spigell/job-research/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
