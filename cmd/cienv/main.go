package main

import (
	"os"

	"github.com/schmitthub/cienv/internal/cienv"
)

func main() {
	os.Exit(cienv.Main())
}
