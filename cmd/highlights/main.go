package main

import (
	"fmt"
	"os"

	cliadapter "github.com/kirillkom/pdf-highlights/internal/adapters/cli"
)

var version = "dev"

func main() {
	if err := cliadapter.NewApp(version).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
