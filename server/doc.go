// Package server provides the HTTP server for the interview service,
// using Gin with HTTP/2 h2c support.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: Panic recovery with structured logging
//   - RequestID: Request ID generation and propagation
//   - CORS: Cross-origin resource sharing configuration
//   - BodySizeLimit: Request body size limits for audio uploads
//   - RequestLogger: Request/response logging with duration tracking
//   - RateLimit: Sliding-window rate limiting
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: Health check aggregation over upstream providers
//   - /info: Service version and uptime information
//   - /metrics: Runtime memory and goroutine metrics
//   - /version: Build version information
package server
