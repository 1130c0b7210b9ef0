// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/medaffairs/internal/textutil"
	"github.com/pdiddy/medaffairs/pkg/types"
)

// systemPrompt frames every specialized call.
const systemPrompt = `You are an experienced medical affairs scientist. You write accurate, balanced,
evidence-based content for healthcare professionals. Cite the provided articles by PMID and do not
invent data that is not in the evidence.`

// maxAbstractChars bounds, in characters, each abstract included in a prompt.
const maxAbstractChars = 1500

// FormatArticleContext renders articles as numbered evidence blocks for a prompt.
func FormatArticleContext(articles []types.Article) string {
	var b strings.Builder
	for i, a := range articles {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, a.Title)
		if len(a.Authors) > 0 {
			authors := a.Authors
			suffix := ""
			if len(authors) > 3 {
				authors, suffix = authors[:3], ", et al."
			}
			fmt.Fprintf(&b, "Authors: %s%s\n", strings.Join(authors, ", "), suffix)
		}
		if a.Journal != "" {
			fmt.Fprintf(&b, "Journal: %s (%s)\n", a.Journal, a.Year())
		}
		fmt.Fprintf(&b, "PMID: %s\n", a.PMID)
		if a.Abstract != "" {
			abstract := a.Abstract
			if cut := textutil.Truncate(abstract, maxAbstractChars); cut != abstract {
				abstract = cut + "..."
			}
			fmt.Fprintf(&b, "Abstract: %s\n", abstract)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

type promptData struct {
	Query       string
	Topic       string
	Focus       string
	Product     string
	Competitors string
	Articles    string
	Count       int
}

var summaryTmpl = template.Must(template.New("summary").Parse(`Summarize the current evidence on "{{.Query}}" from the {{.Count}} articles below.
{{if .Focus}}Focus especially on: {{.Focus}}.
{{end}}
Structure the summary as:
1. Key findings
2. Efficacy and safety data
3. Clinical implications
4. Evidence gaps and limitations

Reference articles by PMID.

Articles:
{{.Articles}}
`))

var abstractTmpl = template.Must(template.New("abstract").Parse(`Write a structured scientific abstract (Background, Methods, Results, Conclusions; at most 300 words)
synthesizing the literature on "{{.Topic}}".

Articles:
{{.Articles}}
`))

var sectionTmpls = map[types.SectionType]*template.Template{
	types.SectionIntroduction: template.Must(template.New("introduction").Parse(`Write the Introduction section of a scientific paper on "{{.Topic}}".
Establish the clinical context and unmet need, summarize prior work, and end with the study objective.
Cite the articles below by PMID.

Articles:
{{.Articles}}
`)),
	types.SectionMethods: template.Must(template.New("methods").Parse(`Write the Methods section of a literature review on "{{.Topic}}".
Describe the search strategy, the databases used, inclusion and exclusion criteria, and the synthesis approach.
The review included the {{.Count}} articles below.

Articles:
{{.Articles}}
`)),
	types.SectionResults: template.Must(template.New("results").Parse(`Write the Results section of a literature review on "{{.Topic}}".
Report the findings of the articles below objectively, grouping them by outcome and citing PMIDs.

Articles:
{{.Articles}}
`)),
	types.SectionDiscussion: template.Must(template.New("discussion").Parse(`Write the Discussion section of a literature review on "{{.Topic}}".
Interpret the findings, compare studies, state limitations, and outline implications for practice and research.

Articles:
{{.Articles}}
`)),
}

var kolTmpl = template.Must(template.New("kol").Parse(`Prepare a briefing document for a meeting with a key opinion leader (KOL) in {{.Topic}}.

Include:
1. Executive summary of the latest evidence
2. Key data points and their clinical relevance
3. Anticipated questions with evidence-based answers
4. Open scientific questions suitable for discussion

Articles:
{{.Articles}}
`))

var competitiveTmpl = template.Must(template.New("competitive").Parse(`Prepare a scientific competitive landscape analysis for {{.Product}}{{if .Competitors}} versus {{.Competitors}}{{end}}.

Cover mechanism of action, efficacy, safety, and positioning, drawing only on the evidence below.
Present a comparison table where the data allow and note where head-to-head evidence is missing.

Articles:
{{.Articles}}
`))

var medInfoTmpl = template.Must(template.New("medinfo").Parse(`Draft a medical information response to the following unsolicited question from a healthcare professional:

"{{.Query}}"

Be balanced and non-promotional, summarize the relevant evidence, state clearly where data are limited,
and list references by PMID.

Articles:
{{.Articles}}
`))

func render(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func (c *Client) generateFrom(ctx context.Context, tmpl *template.Template, data promptData, temperature float64, maxTokens int) (string, error) {
	prompt, err := render(tmpl, data)
	if err != nil {
		return "", err
	}
	return c.Generate(ctx, prompt,
		WithSystem(systemPrompt),
		WithTemperature(temperature),
		WithMaxTokens(maxTokens),
	)
}

func articleData(articles []types.Article) promptData {
	return promptData{Articles: FormatArticleContext(articles), Count: len(articles)}
}

// Summarize writes an evidence summary for query, optionally emphasising
// the given focus areas.
func (c *Client) Summarize(ctx context.Context, articles []types.Article, query string, focus []string) (string, error) {
	d := articleData(articles)
	d.Query = query
	d.Focus = strings.Join(focus, ", ")
	return c.generateFrom(ctx, summaryTmpl, d, 0.3, 4000)
}

// GenerateAbstractText writes a structured abstract on topic.
func (c *Client) GenerateAbstractText(ctx context.Context, articles []types.Article, topic string) (string, error) {
	d := articleData(articles)
	d.Topic = topic
	return c.generateFrom(ctx, abstractTmpl, d, 0.3, 1500)
}

// GeneratePaperSection writes one paper section. Unknown section types are
// rejected before any call is made.
func (c *Client) GeneratePaperSection(ctx context.Context, section types.SectionType, articles []types.Article, topic string) (string, error) {
	tmpl, ok := sectionTmpls[section]
	if !ok {
		return "", fmt.Errorf("unknown paper section %q", section)
	}
	d := articleData(articles)
	d.Topic = topic
	return c.generateFrom(ctx, tmpl, d, 0.4, 3000)
}

// GenerateKOLBriefing writes a briefing for a meeting with a key opinion
// leader in therapeuticArea.
func (c *Client) GenerateKOLBriefing(ctx context.Context, articles []types.Article, therapeuticArea string) (string, error) {
	d := articleData(articles)
	d.Topic = therapeuticArea
	return c.generateFrom(ctx, kolTmpl, d, 0.4, 3000)
}

// GenerateCompetitiveAnalysis compares product against competitors.
func (c *Client) GenerateCompetitiveAnalysis(ctx context.Context, articles []types.Article, product string, competitors []string) (string, error) {
	d := articleData(articles)
	d.Product = product
	d.Competitors = strings.Join(competitors, ", ")
	return c.generateFrom(ctx, competitiveTmpl, d, 0.4, 4000)
}

// GenerateMedicalInfoResponse drafts a response to an unsolicited HCP question.
func (c *Client) GenerateMedicalInfoResponse(ctx context.Context, articles []types.Article, question string) (string, error) {
	d := articleData(articles)
	d.Query = question
	return c.generateFrom(ctx, medInfoTmpl, d, 0.3, 2000)
}
