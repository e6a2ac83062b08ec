package main

import (
	"os"

	clerkcmder "github.com/counterware/clerk/cmd/clerk"
)

func main() {
	cmd := clerkcmder.NewClerkCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
