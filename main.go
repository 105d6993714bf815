package main

import (
	"os"

	"github.com/Oiubrab/edaccelerator-learning-assessment/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
