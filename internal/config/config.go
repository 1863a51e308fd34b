package config

import "os"

// DatabaseConfig returns host, port, user, password, database name
func DatabaseConfig() (string, string, string, string, string) {
	host := GetEnv("DB_HOST", "postgres")
	port := GetEnv("DB_PORT", "5432")
	user := GetEnv("DB_USER", "kinobot")
	password := GetEnv("DB_PASS", "")
	name := GetEnv("DB_NAME", "kinobot")
	return host, port, user, password, name
}

// RedisConfig returns host, port, password
func RedisConfig() (string, string, string) {
	host := GetEnv("R_HOST", "redis")
	port := GetEnv("R_PORT", "6379")
	password := GetEnv("R_PASS", "")
	return host, port, password
}

// KinopoiskConfig returns the catalog API base URL and API key
func KinopoiskConfig() (string, string) {
	baseURL := GetEnv("KINOPOISK_BASE_URL", "https://api.kinopoisk.dev/v1.4")
	apiKey := os.Getenv("KINOPOISK_API_KEY")
	return baseURL, apiKey
}

// WinkBaseURL returns the streaming partner base URL used to build search links
func WinkBaseURL() string {
	return GetEnv("WINK_BASE_URL", "https://wink.rt.ru")
}

// GetEnv retrieves values from environment files based on the key it matches,
// returns a string (value) if not empty
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
