// Package services implements the business logic behind the HTTP handlers.
//
// ReportService turns an uploaded document or supplied markdown into the
// report envelope: text is parsed, the statement table is selected and
// normalized, and the rows are encoded as a workbook. Collaborators that
// reach outside the process (document parser, structured extractor,
// upload store, progress publisher) are interfaces so tests can replace
// them with testify mocks.
//
// HealthService answers the health, readiness, liveness and version
// endpoints.
package services
