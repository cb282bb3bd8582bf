// Command alog appends standard input to a fixed-size circular log file.
package main

import (
	"os"

	"github.com/eunmann/alog/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
