package main

import (
	"os"

	"github.com/schmitthub/nugetsync/internal/nugetsync"
)

func main() {
	os.Exit(nugetsync.Main())
}
