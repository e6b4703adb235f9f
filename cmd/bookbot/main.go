package main

import (
	"os"

	"github.com/bearcrabs/bookbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
