package main

import (
	"fmt"
	"os"

	"github.com/fastygo/storecore/cmd/storectl/commands"
)

var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
