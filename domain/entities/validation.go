package entities

// ValidationResult represents the outcome of validating a manifest or config.
type ValidationResult struct {
	Errors []ValidationError
	Valid  bool
}

// ValidationError represents a specific validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Add records a failure and marks the result invalid.
func (r *ValidationResult) Add(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}
