// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// TaskType selects what the research agent synthesizes and how the output
// document is formatted.
type TaskType string

const (
	TaskSummary     TaskType = "summary"
	TaskAbstract    TaskType = "abstract"
	TaskKOLBriefing TaskType = "kol-briefing"
	TaskCompetitive TaskType = "competitive"
	TaskMedicalInfo TaskType = "medical-info"
	TaskPaper       TaskType = "paper"
	TaskSlides      TaskType = "slides"
)

// TaskTypes lists every accepted task type in display order.
var TaskTypes = []TaskType{
	TaskSummary, TaskAbstract, TaskKOLBriefing, TaskCompetitive,
	TaskMedicalInfo, TaskPaper, TaskSlides,
}

// ParseTaskType converts a tag into a TaskType. The empty string maps to
// TaskSummary; "kol" and "medinfo" are accepted aliases.
func ParseTaskType(s string) (TaskType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "summary":
		return TaskSummary, nil
	case "abstract":
		return TaskAbstract, nil
	case "kol", "kol-briefing", "kol_briefing":
		return TaskKOLBriefing, nil
	case "competitive":
		return TaskCompetitive, nil
	case "medinfo", "medical-info", "medical_info":
		return TaskMedicalInfo, nil
	case "paper":
		return TaskPaper, nil
	case "slides":
		return TaskSlides, nil
	}
	return "", fmt.Errorf("unknown task type %q", s)
}

// SectionType selects the paper-section prompt template.
type SectionType string

const (
	SectionIntroduction SectionType = "introduction"
	SectionMethods      SectionType = "methods"
	SectionResults      SectionType = "results"
	SectionDiscussion   SectionType = "discussion"
)

// ParseSectionType converts a tag into a SectionType, rejecting unknown tags.
func ParseSectionType(s string) (SectionType, error) {
	switch st := SectionType(strings.ToLower(strings.TrimSpace(s))); st {
	case SectionIntroduction, SectionMethods, SectionResults, SectionDiscussion:
		return st, nil
	}
	return "", fmt.Errorf("unknown paper section %q: use introduction, methods, results, or discussion", s)
}

// SearchMode is the query augmentation applied by the research agent.
type SearchMode int

const (
	SearchPlain SearchMode = iota
	SearchClinicalTrials
	SearchRecent
)

func (m SearchMode) String() string {
	switch m {
	case SearchClinicalTrials:
		return "clinical-trials"
	case SearchRecent:
		return "recent"
	default:
		return "plain"
	}
}
