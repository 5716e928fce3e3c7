// Package config loads and validates the application configuration from
// environment variables (STUDY_ prefix) and an optional config.yaml file,
// with environment variables taking precedence.
package config
