package main

import (
	"os"

	"github.com/kailas-cloud/astrobio/cmd/astrobioctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
