// Package app wires the report service together and runs it.
//
// New builds every component from a config.Config: the slog logger, the
// OpenTelemetry providers and business metrics, the LlamaParse and Gemini
// clients, the upload store, the progress hub and the chi router. Run starts
// the HTTP server and blocks until SIGINT or SIGTERM, then drains requests,
// closes WebSocket clients and flushes telemetry.
//
// Middleware order is RequestID → RealIP → CORS → OTel → Logger → Recoverer
// → SecurityHeaders → RateLimit → Timeout. /ws is registered before the OTel
// group because the instrumented ResponseWriter cannot be hijacked.
package app
