package main

import (
	"os"

	"ziplock.sh/cmd/ziplockctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
