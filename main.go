package main

import (
	"os"

	"github.com/talvox/talvox/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
