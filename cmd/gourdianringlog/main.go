package main

import (
	"os"

	"github.com/gourdian25/gourdianringlog/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
