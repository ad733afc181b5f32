// Package main provides the ack component compiler CLI.
package main

import (
	"os"

	"github.com/acklang/ack/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
