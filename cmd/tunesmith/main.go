package main

import (
	"fmt"
	"os"

	"github.com/tunesmith/tunesmith/internal/strategy"
)

func main() {
	if err := strategy.RegisterBuiltins(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register search strategies: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
