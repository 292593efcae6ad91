package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// AppName is also the Postgres schema the app's tables live in.
const AppName = "flatfin"

// LoadEnv reads a .env file into the process environment if one exists.
// Variables already set in the environment win.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error loading .env file: %v", err)
		}
	}
}

// GetEnv returns the value of key or fallback when unset or empty.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt returns the integer value of key or fallback when unset or not a
// number.
func GetEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

// GetEnvBool returns the boolean value of key or fallback when unset or not a
// boolean.
func GetEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Invalid boolean for %s: %q, using %t", key, v, fallback)
		return fallback
	}
	return b
}
