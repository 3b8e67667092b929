package main

import (
	"os"

	"github.com/joho/godotenv"

	"listing-scout/cmd/scout/cmd"
)

func main() {
	_ = godotenv.Load()
	os.Exit(cmd.Execute())
}
