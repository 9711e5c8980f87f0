package main

import (
	"os"

	"credcheck/internal/delivery/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
