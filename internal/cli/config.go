package cli

import "os"

// Config holds CLI configuration
type Config struct {
	ServerAddr string
	Username   string
	Password   string
	Output     string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerAddr: getEnvOrDefault("SPOTCELL_SERVER", "localhost:5001"),
		Username:   os.Getenv("SPOTCELL_USERNAME"),
		Password:   os.Getenv("SPOTCELL_PASSWORD"),
		Output:     "text",
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
