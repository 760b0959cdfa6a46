// Package http contains the HTTP transport layer: the chi router, the
// pipeline run endpoints, artifact and model-document serving, health
// checks, and the WebSocket upgrade. Handlers translate between the API
// contracts in pkg/contracts/api and the pipeline manager; they hold no
// business logic of their own.
package http
