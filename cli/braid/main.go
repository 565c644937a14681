package main

import (
	"os"

	braidcmder "github.com/braidhq/braid/cmd/braid"
)

func main() {
	cmd := braidcmder.NewBraidCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
