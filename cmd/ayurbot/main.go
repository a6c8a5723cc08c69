package main

import (
	"github.com/joho/godotenv"

	"ayurbot/internal/cli"
)

func main() {
	// Provider API keys may live in a local .env; absence is fine.
	_ = godotenv.Load()

	cli.Execute()
}
