package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := execute(); err != nil {
		slog.Error("pulse failed", "error", err)
		os.Exit(1)
	}
}
