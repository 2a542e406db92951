// Package main is the entry point for ebay-bridge.
package main

import (
	"os"

	"github.com/sellerdesk/ebay-bridge/cmd/ebay-bridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
