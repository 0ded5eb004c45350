package main

import (
	"context"
	"log" // Use standard log only for errors before a logger exists
	"os"

	"cryptoSignalBot/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Printf("FATAL: %v", err)
		os.Exit(1)
	}
}
