// Package backend provides the social media API server.

// The executables live under cmd/ and the API itself is organized into
// subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/websocket: WebSocket hub, presence directory and event gateway
// - internal/chat: Direct-message rooms with ordered, atomically appended history
// - internal/models: Data models and database schemas
// - internal/repository: gorm repositories over the models
// - internal/database: Memoized connection, migrations and test helpers
// - internal/storage: Blob storage (S3 behind a circuit breaker, or memory)
// - internal/stories: Expiry sweeper for stories and notes
// - internal/cache: Redis mirror of the online set
// - internal/middleware: HTTP middleware (rate limiting, metrics, tracing, etc.)
// - internal/seed: Development and test data

// See the individual package documentation for detailed API reference.
package backend
