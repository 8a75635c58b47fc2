package main

import (
	"os"

	"github.com/quick-calculator/calcdir/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
