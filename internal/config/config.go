package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the service reads from the environment.
type Config struct {
	Port            string
	CredentialsFile string
	ProjectID       string
	StorageBucket   string
	AMQPURL         string
	OTLPEndpoint    string
	Environment     string
	DebugRoutes     bool
}

// Load reads .env if present and resolves the service configuration.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	return Config{
		Port:            getEnv("PORT", "8084"),
		CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json"),
		ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		StorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),
		AMQPURL:         getEnv("AMQP_URL", ""),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Environment:     getEnv("APP_ENV", "development"),
		DebugRoutes:     getEnv("DEBUG_ROUTES", "") == "true",
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
