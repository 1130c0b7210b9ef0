// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Hypothesis is one research hypothesis produced by the ideation stage.
// Hypotheses with PassedReview false are excluded from downstream stages.
type Hypothesis struct {
	// Statement is the hypothesis text.
	Statement string `json:"statement"`

	// Importance explains why the hypothesis matters. May be empty.
	Importance string `json:"importance"`

	// Validation describes how the hypothesis could be tested. May be empty.
	Validation string `json:"validation"`

	// Evidence is the subset of retrieved articles supporting the hypothesis.
	Evidence []Article `json:"evidence"`

	// PassedReview marks the hypothesis as eligible for planning.
	PassedReview bool `json:"passed_review"`
}

// Plan is the methodology produced for one surviving hypothesis.
type Plan struct {
	Hypothesis  Hypothesis `json:"hypothesis"`
	Methodology string     `json:"methodology"`
	DataSources []string   `json:"data_sources"`
	Timeline    string     `json:"timeline"`
}

// ExecutionStatus tags the outcome of the execution stage for one plan.
type ExecutionStatus string

const (
	ExecutionCompleted ExecutionStatus = "completed"
)

// ExecutionResult holds the analysis generated for one plan.
type ExecutionResult struct {
	Plan     Plan            `json:"plan"`
	Analysis string          `json:"analysis"`
	Status   ExecutionStatus `json:"status"`

	// NegativeResult is set when the analysis reports insufficient or
	// limited evidence. It is a reportable finding, not a failure.
	NegativeResult bool      `json:"negative_result"`
	Timestamp      time.Time `json:"timestamp"`
}

// Paper is a draft manuscript written from one execution result.
type Paper struct {
	Content        string    `json:"content"`
	Hypothesis     string    `json:"hypothesis"`
	NegativeResult bool      `json:"negative_result"`
	Timestamp      time.Time `json:"timestamp"`
}

// Project is one pipeline run. Its directory is the only durable record:
// stage checkpoints are written there as named JSON files.
type Project struct {
	// ID is a time-ordered identifier (e.g. "20261017_153000_0192f1a3").
	ID string `json:"id"`

	// Query is the originating research question.
	Query string `json:"query"`

	// Dir is the project workspace directory.
	Dir string `json:"dir"`

	// State is an opaque map of run metadata (current stage, review flag).
	State map[string]any `json:"state"`

	CreatedAt time.Time `json:"created_at"`
}
