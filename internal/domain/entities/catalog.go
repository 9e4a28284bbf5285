package entities

import (
	"regexp"
	"strings"

	"github.com/siemcac/siemcac/internal/domain/values"
)

// Internal bookkeeping keys carried by template content during merge and
// stripped before the configuration leaves the engine. Every key starting
// with InternalPrefix is internal.
const (
	InternalPrefix = "_"

	// KeyID is the internal element identifier on nested list elements.
	KeyID = "_id"
	// KeyAction marks an explicit operation, currently only deletion.
	KeyAction = "_action"

	// Ordering directive keys on nested list elements.
	KeyPosition = "_position"
	KeyFirst    = "_first"
	KeyLast     = "_last"
	KeyAfter    = "_after"
	KeyBefore   = "_before"

	// ActionDelete removes the matching resource or list element.
	ActionDelete = "delete"
)

// UnsetSentinel is the reserved reference value meaning "explicitly unset";
// it never triggers a cross-reference lookup and is serialized as-is for the
// deployment API.
const UnsetSentinel = "None"

// identifyingFields maps each resource-type to the field that identifies
// its entries across a template chain. The field names are not uniform
// across types; they mirror the upstream API payloads, so this table is the
// single place the name is ever looked up from.
var identifyingFields = map[string]string{
	"repos":                  "name",
	"routing_policies":       "policy_name",
	"processing_policies":    "policy_name",
	"normalization_policies": "name",
	"enrichment_policies":    "name",
	"enrichment_sources":     "name",
	"device_groups":          "name",
	"devices":                "name",
	"syslog_collectors":      "name",
	"alert_rules":            "name",
}

// IdentifyingField returns the identifying field name for a resource-type.
func IdentifyingField(resourceType string) (string, bool) {
	f, ok := identifyingFields[resourceType]
	return f, ok
}

// ResourceTypes returns all known resource-type names in deployment
// dependency declaration order.
func ResourceTypes() []string {
	out := make([]string, len(deploymentDependencies))
	for i, d := range deploymentDependencies {
		out[i] = d.Type
	}
	return out
}

// KnownResourceType reports whether the engine has a catalog entry for the
// given resource-type name.
func KnownResourceType(resourceType string) bool {
	_, ok := identifyingFields[resourceType]
	return ok
}

// ReferenceSpec declares one reference field of a resource-type. Path is a
// dot path into the resource; a "*" segment traverses every element of a
// list. Opaque references resolve against the target type's opaque "id"
// index instead of its identifying-field index (configurations imported
// from live backups carry API ids rather than names).
type ReferenceSpec struct {
	Path       string
	TargetType string
	Opaque     bool
	// Warn downgrades an unresolved reference to a warning; the upstream
	// API substitutes a default for these fields instead of rejecting.
	Warn bool
}

// Segments splits the path into its traversal segments.
func (s ReferenceSpec) Segments() []string {
	return strings.Split(s.Path, ".")
}

// referenceSpecs is the static table of declared references, keyed by the
// referencing resource-type.
var referenceSpecs = map[string][]ReferenceSpec{
	"routing_policies": {
		{Path: "catch_all", TargetType: "repos"},
		{Path: "routing_criteria.*.repo", TargetType: "repos"},
	},
	"enrichment_policies": {
		{Path: "specifications.*.source", TargetType: "enrichment_sources", Warn: true},
	},
	"processing_policies": {
		{Path: "routing_policy", TargetType: "routing_policies"},
		{Path: "routing_policy_id", TargetType: "routing_policies", Opaque: true},
		{Path: "normalization_policy", TargetType: "normalization_policies", Warn: true},
		{Path: "enrichment_policy", TargetType: "enrichment_policies", Warn: true},
	},
	"devices": {
		{Path: "processing_policy", TargetType: "processing_policies"},
		{Path: "device_group", TargetType: "device_groups"},
	},
	"syslog_collectors": {
		{Path: "devices.*", TargetType: "devices"},
	},
	"alert_rules": {
		{Path: "repos.*", TargetType: "repos"},
	},
}

// References returns the declared reference fields of a resource-type.
func References(resourceType string) []ReferenceSpec {
	return referenceSpecs[resourceType]
}

// FieldSpec declares one field of a resource-type for schema compliance
// checking.
type FieldSpec struct {
	Name     string
	Required bool
	Kind     values.Kind
	Pattern  *regexp.Regexp
}

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// fieldSpecs is the static per-resource-type field specification, derived
// from the deployment API payload requirements.
var fieldSpecs = map[string][]FieldSpec{
	"repos": {
		{Name: "name", Required: true, Kind: values.KindText, Pattern: namePattern},
		{Name: "hiddenrepopath", Kind: values.KindList},
	},
	"routing_policies": {
		{Name: "policy_name", Required: true, Kind: values.KindText, Pattern: namePattern},
		{Name: "catch_all", Required: true, Kind: values.KindText},
		{Name: "routing_criteria", Required: true, Kind: values.KindList},
	},
	"processing_policies": {
		{Name: "policy_name", Required: true, Kind: values.KindText, Pattern: namePattern},
		{Name: "routing_policy", Required: true, Kind: values.KindText},
		{Name: "normalization_policy", Kind: values.KindText},
		{Name: "enrichment_policy", Kind: values.KindText},
	},
	"normalization_policies": {
		{Name: "name", Required: true, Kind: values.KindText, Pattern: namePattern},
		{Name: "normalization_packages", Kind: values.KindList},
		{Name: "compiled_normalizer", Kind: values.KindList},
	},
	"enrichment_policies": {
		{Name: "name", Required: true, Kind: values.KindText, Pattern: namePattern},
		{Name: "specifications", Required: true, Kind: values.KindList},
	},
	"enrichment_sources": {
		{Name: "name", Required: true, Kind: values.KindText, Pattern: namePattern},
	},
	"device_groups": {
		{Name: "name", Required: true, Kind: values.KindText, Pattern: namePattern},
	},
	"devices": {
		{Name: "name", Required: true, Kind: values.KindText, Pattern: namePattern},
		{Name: "ip", Kind: values.KindText},
		{Name: "processing_policy", Kind: values.KindText},
		{Name: "device_group", Kind: values.KindText},
	},
	"syslog_collectors": {
		{Name: "name", Required: true, Kind: values.KindText, Pattern: namePattern},
		{Name: "devices", Kind: values.KindList},
	},
	"alert_rules": {
		{Name: "name", Required: true, Kind: values.KindText, Pattern: namePattern},
		{Name: "repos", Kind: values.KindList},
	},
}

// Fields returns the field specification of a resource-type.
func Fields(resourceType string) []FieldSpec {
	return fieldSpecs[resourceType]
}

// TypeDependency declares which resource-types must be deployed before a
// given type. The table is authored by hand against the deployment API's
// creation-order constraints and is acyclic by construction; it is never
// discovered from documents at runtime.
type TypeDependency struct {
	Type      string
	DependsOn []string
}

// deploymentDependencies declaration order doubles as the deterministic
// tie-break for the topological sort.
var deploymentDependencies = []TypeDependency{
	{Type: "repos"},
	{Type: "device_groups"},
	{Type: "normalization_policies"},
	{Type: "enrichment_sources"},
	{Type: "routing_policies", DependsOn: []string{"repos"}},
	{Type: "enrichment_policies", DependsOn: []string{"enrichment_sources"}},
	{Type: "processing_policies", DependsOn: []string{"routing_policies", "normalization_policies", "enrichment_policies"}},
	{Type: "devices", DependsOn: []string{"processing_policies", "device_groups"}},
	{Type: "syslog_collectors", DependsOn: []string{"devices"}},
	{Type: "alert_rules", DependsOn: []string{"repos"}},
}

// DeploymentDependencies returns the static resource-type dependency table.
func DeploymentDependencies() []TypeDependency {
	return deploymentDependencies
}
