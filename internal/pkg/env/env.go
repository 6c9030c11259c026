package env

import (
	"os"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
)

// Env holds the values read from the .env file.
var Env map[string]string

// GetEnv prefers the .env value, then a non-empty process variable, then def.
func GetEnv(key, def string) string {
	if val, ok := Env[key]; ok {
		return val
	}
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return def
}

// SetupEnvFile loads the first .env file found. Running without one is fine
// as long as the process environment carries the configuration.
func SetupEnvFile() {
	candidates := []string{
		".env",
		"../../.env",    // from cmd/giftscout
		"../../../.env", // from package test dirs
	}

	for _, path := range candidates {
		loaded, err := godotenv.Read(path)
		if err != nil {
			continue
		}
		log.Infof("[Env] Loaded %s", path)
		Env = loaded
		return
	}

	Env = map[string]string{}
	log.Warn("[Env] No .env file found, using process environment only")
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
