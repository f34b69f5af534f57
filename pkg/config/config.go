package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	Environment     string

	// Messaging core tuning
	MessageHistoryWindow int
	MaxMessageLength     int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		FirebaseProject:      getEnv("FIREBASE_PROJECT_ID", ""),
		Environment:          getEnv("ENVIRONMENT", "development"),
		MessageHistoryWindow: getEnvAsInt("MESSAGE_HISTORY_WINDOW", 50),
		MaxMessageLength:     getEnvAsInt("MAX_MESSAGE_LENGTH", 2000),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
