package main

import (
	"os"

	"github.com/m3rciful/expensebot/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
