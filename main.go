package main

import (
	"os"

	"github.com/emberdating/ember/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
