package main

import (
	"os"

	"github.com/piscinadeentropia/mrquizzer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
