package main

import (
	"os"

	"github.com/arthur-debert/myquest/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
