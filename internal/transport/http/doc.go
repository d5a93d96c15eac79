// Package http implements the chi handlers of the report service.
//
// Handlers stay thin: they decode and validate the request, call the
// service layer and render the result with go-chi/render. Failures go through
// internal/errors.ErrorHandler, which writes RFC 7807 problem documents;
// ErrorMappings lists how the service's sentinel errors map to status codes.
//
// Routes:
//
//	GET  /api/health          liveness summary
//	GET  /api/health/ready    readiness with collaborator probes
//	GET  /api/health/live     runtime details
//	GET  /api/version         build information
//	POST /api/upload          multipart PDF in field "file"
//	POST /api/convert         JSON {"text": "...", "filename": "...", "mode": "..."}
package http
