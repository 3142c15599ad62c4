package definition

import "fmt"

// ConfigurationError reports a definition that breaks one of its rules.
// It is raised before any network activity takes place.
type ConfigurationError struct {
	Field  string
	Reason string
}

// NewConfigurationError reports an invalid field of a definition.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid definition: %s %s", e.Field, e.Reason)
}
