package main

import (
	"os"

	"github.com/Station-Manager/toolkit/errchain"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		_ = errchain.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}
