package dto

import (
	"time"

	"github.com/siemcac/siemcac/internal/domain/entities"
)

// ResponseMetadata echoes the request identity with timing.
type ResponseMetadata struct {
	RequestID   string
	ProcessedAt time.Time
	Duration    time.Duration
}

// ResolveResponse is the outcome of one resolution run.
type ResolveResponse struct {
	Configuration *entities.ResolvedConfiguration
	Result        *entities.ValidationResult
	Metadata      ResponseMetadata
}

// ChangeKind classifies one planned change.
type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Change is one planned mutation on one node. Desired carries the
// payload apply would send; it is omitted from serialized plans.
type Change struct {
	Node         string            `json:"node" yaml:"node"`
	ResourceType string            `json:"resource_type" yaml:"resource_type"`
	Resource     string            `json:"resource" yaml:"resource"`
	Kind         ChangeKind        `json:"kind" yaml:"kind"`
	Diff         string            `json:"diff,omitempty" yaml:"diff,omitempty"`
	Desired      entities.Resource `json:"-" yaml:"-"`
}

// PlanResponse is the ordered set of changes that apply would perform.
type PlanResponse struct {
	Changes  []Change
	Result   *entities.ValidationResult
	Metadata ResponseMetadata
}

// NodeOutcome reports how apply went on one node.
type NodeOutcome struct {
	Node    string `json:"node" yaml:"node"`
	Applied int    `json:"applied" yaml:"applied"`
	Failed  int    `json:"failed" yaml:"failed"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ApplyResponse aggregates per-node apply outcomes.
type ApplyResponse struct {
	RunID    string
	Outcomes []NodeOutcome
	Metadata ResponseMetadata
}

// BackupResponse lists the files written by a backup run.
type BackupResponse struct {
	Files    []string
	Metadata ResponseMetadata
}
