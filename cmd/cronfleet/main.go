package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set SSH_* in the environment.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
