// Package extraction talks to the external services that turn uploaded
// documents into text or rows.
//
// LlamaParse converts a PDF into markdown through its REST parsing API.
// Gemini reads that markdown and returns the profit and loss statement as a
// JSON array of objects, which is decoded with key order preserved and
// repaired when the model emits almost-JSON.
//
// Clients are built from config.ExtractionConfig. A missing API key is not
// a construction error; calls return ErrNotConfigured so the service can
// still start and serve the heuristic path.
package extraction
