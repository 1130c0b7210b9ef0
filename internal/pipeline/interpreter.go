// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"regexp"
	"strings"

	"github.com/pdiddy/medaffairs/internal/textutil"
	"github.com/pdiddy/medaffairs/pkg/types"
)

// Interpreter turns free generated text into pipeline structures.
type Interpreter interface {
	// ParseHypotheses extracts hypotheses from ideation output. evidence
	// is the article set the hypotheses were generated from.
	ParseHypotheses(text string, evidence []types.Article) []types.Hypothesis

	// IsNegativeResult reports whether an analysis states that the
	// evidence is insufficient or limited.
	IsNegativeResult(text string) bool
}

const (
	// evidenceCount is how many leading articles are attached to each hypothesis.
	evidenceCount = 3

	// minDetailLen is the length a line must exceed to count as importance
	// or validation text.
	minDetailLen = 20

	// fallbackLen bounds the single hypothesis built from unparseable text.
	fallbackLen = 200
)

var (
	numberedLine = regexp.MustCompile(`^(?:\d+[.):]|#+\s*\d+[.):]?)\s*`)
	negativeCues = []string{"insufficient", "limited evidence"}
)

// HeuristicInterpreter parses line by line. A line that starts with list
// numbering or mentions "hypothesis" opens a new hypothesis; the next two
// lines longer than 20 characters become its importance and validation.
// Every hypothesis passes review.
type HeuristicInterpreter struct{}

// ParseHypotheses implements Interpreter. When no line opens a hypothesis,
// the first 200 characters of text become a single fallback hypothesis.
func (HeuristicInterpreter) ParseHypotheses(text string, evidence []types.Article) []types.Hypothesis {
	ev := evidence
	if len(ev) > evidenceCount {
		ev = ev[:evidenceCount]
	}

	var hyps []types.Hypothesis
	var cur *types.Hypothesis
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if numberedLine.MatchString(line) || strings.Contains(strings.ToLower(line), "hypothesis") {
			hyps = append(hyps, types.Hypothesis{
				Statement:    cleanStatement(line),
				Evidence:     ev,
				PassedReview: true,
			})
			cur = &hyps[len(hyps)-1]
			continue
		}
		if cur == nil || len(line) <= minDetailLen {
			continue
		}
		switch {
		case cur.Importance == "":
			cur.Importance = line
		case cur.Validation == "":
			cur.Validation = line
		}
	}

	if len(hyps) == 0 {
		return []types.Hypothesis{{
			Statement:    textutil.Truncate(strings.TrimSpace(text), fallbackLen),
			Evidence:     ev,
			PassedReview: true,
		}}
	}
	return hyps
}

// IsNegativeResult implements Interpreter with a case-insensitive match on
// "insufficient" or "limited evidence".
func (HeuristicInterpreter) IsNegativeResult(text string) bool {
	lower := strings.ToLower(text)
	for _, cue := range negativeCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

func cleanStatement(line string) string {
	s := numberedLine.ReplaceAllString(line, "")
	s = strings.Trim(s, "*_ ")
	if s == "" {
		return line
	}
	return s
}

