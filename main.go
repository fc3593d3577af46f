package main

import (
	"os"

	"github.com/sfbilling/sfbilling/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
