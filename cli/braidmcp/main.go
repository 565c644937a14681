package main

import (
	"fmt"
	"os"

	mcpcmder "github.com/braidhq/braid/cmd/braid/serve/mcp"
)

func main() {
	cmd := mcpcmder.NewMCPCmd()

	cmd.Use = "braidmcp"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .braid/ config directory")

	err := cmd.Execute()
	if err != nil {
		fmt.Printf("Error executing root command: %v\n", err)
		os.Exit(1)
	}
}
