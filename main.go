package main

import (
	"os"

	"github.com/freightplan/freightplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
