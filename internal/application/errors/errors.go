// Package apperrors defines application-level error types.
package apperrors

import "fmt"

// ResolutionError indicates template resolution failed before validation
// could run (missing template, cycle, bad ordering anchor).
type ResolutionError struct {
	Ref     string
	Message string
	Cause   error
}

func (e *ResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resolution failed for %s: %s: %v", e.Ref, e.Message, e.Cause)
	}
	return fmt.Sprintf("resolution failed for %s: %s", e.Ref, e.Message)
}

func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// NewResolutionError creates a new resolution error.
func NewResolutionError(ref, message string, cause error) *ResolutionError {
	return &ResolutionError{Ref: ref, Message: message, Cause: cause}
}

// ValidationError indicates the resolved document carries error-severity
// diagnostics, so no mutating call may be issued.
type ValidationError struct {
	Ref    string
	Errors int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %d error(s)", e.Ref, e.Errors)
}

// NewValidationError creates a new validation error.
func NewValidationError(ref string, errors int) *ValidationError {
	return &ValidationError{Ref: ref, Errors: errors}
}

// DeploymentError indicates a mutating call against a node failed.
type DeploymentError struct {
	Node         string
	ResourceType string
	Resource     string
	Cause        error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deployment failed on %s: %s/%s: %v", e.Node, e.ResourceType, e.Resource, e.Cause)
}

func (e *DeploymentError) Unwrap() error {
	return e.Cause
}

// NewDeploymentError creates a new deployment error.
func NewDeploymentError(node, resourceType, resource string, cause error) *DeploymentError {
	return &DeploymentError{Node: node, ResourceType: resourceType, Resource: resource, Cause: cause}
}

// ConfigurationError indicates system config or setup issue.
type ConfigurationError struct {
	Aspect  string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{Aspect: aspect, Message: message, Cause: cause}
}
