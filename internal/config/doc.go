// Package config loads and validates the application configuration from,
// in increasing precedence: built-in defaults, an optional YAML file, a
// .env file, and AGRIPREP_* environment variables.
package config
