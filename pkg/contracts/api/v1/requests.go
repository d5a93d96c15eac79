// Package api contains the HTTP request contracts for version v1.
package api

// ConvertRequest converts already-extracted document text without an upload.
type ConvertRequest struct {
	Text     string `json:"text" validate:"required"`
	Filename string `json:"filename,omitempty" validate:"omitempty,max=255,filename"`
	Mode     string `json:"mode,omitempty" validate:"omitempty,oneof=heuristic llm auto"`
}
