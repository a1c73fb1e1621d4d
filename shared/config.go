package shared

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadDotEnv loads a .env file if one is present. Missing files are not an
// error: inside the enclave all configuration arrives through the environment
// baked into the image.
func LoadDotEnv(logger *Logger) {
	if err := godotenv.Load(); err != nil {
		logger.DebugIf("no .env file loaded", zap.Error(err))
	}
}

// Helper functions for environment variable handling
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvUint32OrDefault(key string, defaultValue uint32) uint32 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseUint(value, 10, 32); err == nil {
			return uint32(intValue)
		}
	}
	return defaultValue
}

// RequireEnv reads each named variable and reports every missing one in a
// single error so operators fix the environment in one pass.
func RequireEnv(keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	var missing []string
	for _, key := range keys {
		value := os.Getenv(key)
		if value == "" {
			missing = append(missing, key)
			continue
		}
		values[key] = value
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables not set: %v", missing)
	}
	return values, nil
}
