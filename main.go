package main

import (
	"os"
)

func main() {
	if err := rootdMain(); err != nil {
		os.Exit(1)
	}
}
