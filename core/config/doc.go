// Package config loads application configuration from environment variables
// and an optional .env file into typed structs. Defaults come from struct
// tags; nested keys map to underscore-joined environment variables
// (target.host -> TARGET_HOST).
package config
