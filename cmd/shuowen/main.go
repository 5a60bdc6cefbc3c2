package main

import (
	"os"

	"github.com/gatzby-git/shuowenjiezi/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
