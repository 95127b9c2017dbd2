package main

import (
	"os"

	"github.com/coogplanner/backend/cmd/planner/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
