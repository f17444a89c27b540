package main

import (
	"os"

	"github.com/docchat-dev/docchat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
