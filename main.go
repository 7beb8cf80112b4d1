package main

import (
	"github.com/Guilherme32/rosa-go/cmd"
	"github.com/Guilherme32/rosa-go/internal/logging"
)

func main() {
	if err := cmd.RootCommand().Execute(); err != nil {
		logging.Fatal("rosa exiting", "error", err)
	}
}
