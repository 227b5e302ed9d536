package main

import (
	"os"

	"github.com/dshills/codelibrarian/cmd/codelibrarian/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
