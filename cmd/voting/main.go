package main

import (
	"os"

	"github.com/FME849/wsos23-voting-app/cmd/voting/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
