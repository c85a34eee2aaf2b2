package main

import (
	"os"

	"github.com/beiklive/mytoolmodule/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
