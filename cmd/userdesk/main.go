// Package main is the entry point for userdesk, a local directory of user
// records seeded from a remote API.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := bootstrap(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
