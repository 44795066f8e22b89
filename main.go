package main

import (
	"os"

	"github.com/skillgenie/skillgenie/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
