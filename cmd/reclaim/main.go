// Package main provides the entry point for the reclaim disk cleanup CLI.
package main

import (
	"os"

	"github.com/jamesainslie/reclaim/pkg/reclaim/logging"
)

func main() {
	err := Execute()
	_ = logging.Close()
	if err != nil {
		os.Exit(1)
	}
}
