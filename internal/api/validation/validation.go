// Package validation performs request field validation at the HTTP
// boundary, before any flow touches storage.
package validation

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
