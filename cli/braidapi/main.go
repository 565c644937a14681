package main

import (
	"os"

	apicmder "github.com/braidhq/braid/cmd/braid/serve/api"
)

func main() {
	cmd := apicmder.NewAPICmd()
	cmd.Use = "braidapi"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .braid/ config directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
