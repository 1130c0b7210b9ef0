// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/medaffairs/internal/llm"
	"github.com/pdiddy/medaffairs/pkg/types"
)

// Sampling temperatures per stage.
const (
	ideationTemperature  = 0.7
	planningTemperature  = 0.5
	executionTemperature = 0.4
	writingTemperature   = 0.5
)

var ideationTmpl = template.Must(template.New("ideation").Parse(`You are a medical affairs research scientist. Based on the literature below about "{{.Query}}",
propose 3 to 5 novel, testable research hypotheses that address gaps in the current evidence.

For each hypothesis write:
1. The hypothesis statement on a numbered line
Then, on separate lines:
- Why it matters (clinical or scientific importance)
- How it could be validated with real-world or trial data

Literature:
{{.Articles}}
`))

var planningTmpl = template.Must(template.New("planning").Parse(`Design a research methodology to test this hypothesis:

"{{.Hypothesis.Statement}}"
{{if .Hypothesis.Importance}}
Importance: {{.Hypothesis.Importance}}{{end}}{{if .Hypothesis.Validation}}
Proposed validation: {{.Hypothesis.Validation}}{{end}}

Available data sources: {{.Sources}}.

Describe the study design, population, endpoints, statistical analysis, and the main
limitations. Be specific and realistic.
`))

var executionTmpl = template.Must(template.New("execution").Parse(`Act as the analyst executing the following research plan. Using only the published evidence
you know of, analyse whether the data support the hypothesis and summarize the expected findings.
If the evidence is insufficient or limited, say so explicitly; a negative result is a valid finding.

Hypothesis: {{.Plan.Hypothesis.Statement}}

Methodology:
{{.Plan.Methodology}}
`))

var writingTmpl = template.Must(template.New("writing").Parse(`Write a concise scientific paper draft (Title, Abstract, Introduction, Methods, Results,
Discussion, Conclusion) reporting the following analysis.
{{if .Result.NegativeResult}}The analysis is a negative result: report it transparently and discuss what evidence is missing.
{{end}}
Hypothesis: {{.Result.Plan.Hypothesis.Statement}}

Methodology:
{{.Result.Plan.Methodology}}

Analysis:
{{.Result.Analysis}}
`))

type stagePrompt struct {
	Query      string
	Articles   string
	Hypothesis types.Hypothesis
	Sources    string
	Plan       types.Plan
	Result     types.ExecutionResult
}

func renderPrompt(tmpl *template.Template, data stagePrompt) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func ideationPrompt(query string, articles []types.Article) (string, error) {
	return renderPrompt(ideationTmpl, stagePrompt{Query: query, Articles: llm.FormatArticleContext(articles)})
}

func planningPrompt(h types.Hypothesis) (string, error) {
	return renderPrompt(planningTmpl, stagePrompt{Hypothesis: h, Sources: strings.Join(DataSources, ", ")})
}

func executionPrompt(p types.Plan) (string, error) {
	return renderPrompt(executionTmpl, stagePrompt{Plan: p})
}

func writingPrompt(r types.ExecutionResult) (string, error) {
	return renderPrompt(writingTmpl, stagePrompt{Result: r})
}
