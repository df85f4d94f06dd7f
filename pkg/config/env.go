package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// EnvFile is the dotenv file read when APP_ENV is "local".
const EnvFile = ".env.local"

// LoadEnv loads environment variables from .env.local if APP_ENV is "local"
func LoadEnv() {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development" // Default to development if not set
		os.Setenv("APP_ENV", appEnv)
	}

	if appEnv != "local" {
		log.Printf("Running in %s environment. Not loading %s.", appEnv, EnvFile)
		return
	}

	// Values already present in the process environment win over the file.
	if err := godotenv.Load(EnvFile); err != nil {
		log.Printf("Warning: %s file not found, or error loading: %v. Relying on system environment variables.", EnvFile, err)
		return
	}
	log.Printf("Loaded %s for local development.", EnvFile)
}
