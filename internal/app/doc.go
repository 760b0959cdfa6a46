// Package app assembles the service: it loads configuration, initializes
// logging and observability, builds the pipeline dependencies, and runs the
// HTTP server with graceful shutdown.
package app
