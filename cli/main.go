package main

import (
	"os"

	"github.com/satishbabariya/litemodel/cli/commands"
	"github.com/satishbabariya/litemodel/cli/internal/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}
}
