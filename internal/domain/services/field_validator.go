package services

import (
	"fmt"

	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/domain/values"
)

// FieldValidator checks resolved resources against the static per-type
// field specification: required fields present, kinds matching, patterns
// satisfied. A present-but-null optional field is accepted, it means
// "explicitly unset" and is serialized downstream as a sentinel.
type FieldValidator struct{}

func NewFieldValidator() *FieldValidator {
	return &FieldValidator{}
}

// Validate returns one diagnostic per violation. Unknown resource-types
// are reported once per type, not per entry.
func (fv *FieldValidator) Validate(doc map[string][]entities.Resource) []entities.Diagnostic {
	var diags []entities.Diagnostic
	for _, resourceType := range sortedKeys(doc) {
		if !entities.KnownResourceType(resourceType) {
			diags = append(diags, entities.Diagnostic{
				Severity:     entities.SeverityWarning,
				Code:         entities.CodeUnknownResourceType,
				ResourceType: resourceType,
				Message:      fmt.Sprintf("resource type %q is not recognized and will not be deployed", resourceType),
			})
			continue
		}
		specs := entities.Fields(resourceType)
		for _, resource := range doc[resourceType] {
			name, _ := resource.Identity(resourceType)
			for _, spec := range specs {
				fv.checkField(&diags, resourceType, name, resource, spec)
			}
		}
	}
	return diags
}

func (fv *FieldValidator) checkField(diags *[]entities.Diagnostic, resourceType, resourceName string, resource entities.Resource, spec entities.FieldSpec) {
	v, present := resource[spec.Name]

	if !present {
		if spec.Required {
			*diags = append(*diags, entities.Diagnostic{
				Severity:     entities.SeverityError,
				Code:         entities.CodeSchemaViolation,
				ResourceType: resourceType,
				ResourceName: resourceName,
				Field:        spec.Name,
				Message:      fmt.Sprintf("required field %q is missing", spec.Name),
			})
		}
		return
	}

	if v.IsNull() {
		if spec.Required {
			*diags = append(*diags, entities.Diagnostic{
				Severity:     entities.SeverityError,
				Code:         entities.CodeSchemaViolation,
				ResourceType: resourceType,
				ResourceName: resourceName,
				Field:        spec.Name,
				Message:      fmt.Sprintf("required field %q must not be null", spec.Name),
			})
		}
		return
	}

	if v.Kind() != spec.Kind {
		*diags = append(*diags, entities.Diagnostic{
			Severity:     entities.SeverityError,
			Code:         entities.CodeSchemaViolation,
			ResourceType: resourceType,
			ResourceName: resourceName,
			Field:        spec.Name,
			Message:      fmt.Sprintf("field %q must be %s, got %s", spec.Name, spec.Kind, v.Kind()),
		})
		return
	}

	if spec.Pattern != nil && v.Kind() == values.KindText && !spec.Pattern.MatchString(v.Text()) {
		*diags = append(*diags, entities.Diagnostic{
			Severity:     entities.SeverityError,
			Code:         entities.CodeSchemaViolation,
			ResourceType: resourceType,
			ResourceName: resourceName,
			Field:        spec.Name,
			Message:      fmt.Sprintf("field %q value %q does not match pattern %s", spec.Name, v.Text(), spec.Pattern),
		})
	}
}
