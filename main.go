package main

import (
	"os"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
