package main

import (
	"os"

	"github.com/moolen/meshprobe/cmd/meshprobe/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
