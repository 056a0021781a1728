// Package config loads application configuration from the environment.
//
// Loads from a .env file when present (godotenv), maps variables to the
// Config struct via go-simpler/env struct tags, and validates cross-field
// constraints before anything else starts.
package config
