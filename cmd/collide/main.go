package main

import (
	"os"

	"github.com/tamirms/collide/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
