// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent implements the single-shot research workflow: search the
// literature, synthesize the hits with the generative client, write one
// document, and report the outcome as a Result. Failures at any stage are
// folded into the Result rather than returned.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/medaffairs/internal/document"
	"github.com/pdiddy/medaffairs/internal/pubmed"
	"github.com/pdiddy/medaffairs/pkg/types"
)

// DefaultMaxResults is the search cap when Options.MaxResults is zero.
const DefaultMaxResults = 20

// ErrNoArticles is reported when the search stage returns zero hits.
var ErrNoArticles = errors.New("No articles found for query")

// Literature is the subset of the literature client the agent uses.
type Literature interface {
	SearchAndEnrich(ctx context.Context, query string, maxResults int) ([]types.Article, error)
	SearchClinicalTrialsOnly(ctx context.Context, query, phase string) ([]types.Article, error)
	SearchRecent(ctx context.Context, query string, yearsBack int) ([]types.Article, error)
	FetchAbstract(ctx context.Context, pmid string) pubmed.AbstractRecord
}

// Synthesizer is the subset of the generative client the agent uses.
type Synthesizer interface {
	Summarize(ctx context.Context, articles []types.Article, query string, focus []string) (string, error)
	GenerateAbstractText(ctx context.Context, articles []types.Article, topic string) (string, error)
	GeneratePaperSection(ctx context.Context, section types.SectionType, articles []types.Article, topic string) (string, error)
	GenerateKOLBriefing(ctx context.Context, articles []types.Article, therapeuticArea string) (string, error)
	GenerateCompetitiveAnalysis(ctx context.Context, articles []types.Article, product string, competitors []string) (string, error)
	GenerateMedicalInfoResponse(ctx context.Context, articles []types.Article, question string) (string, error)
}

// Options tune one workflow run.
type Options struct {
	MaxResults  int      `json:"max_results,omitempty"`
	Clinical    bool     `json:"clinical,omitempty"`
	Phase       string   `json:"phase,omitempty"`
	RecentYears int      `json:"recent_years,omitempty"`
	Focus       []string `json:"focus,omitempty"`
	Product     string   `json:"product,omitempty"`
	Competitors []string `json:"competitors,omitempty"`
}

// Mode returns the query augmentation to apply. Clinical takes precedence
// over RecentYears when both are set.
func (o Options) Mode() types.SearchMode {
	switch {
	case o.Clinical:
		return types.SearchClinicalTrials
	case o.RecentYears > 0:
		return types.SearchRecent
	default:
		return types.SearchPlain
	}
}

func (o Options) maxResults() int {
	if o.MaxResults > 0 {
		return o.MaxResults
	}
	return DefaultMaxResults
}

// Result reports one workflow run. Error is set only when Success is false.
type Result struct {
	Success        bool            `json:"success"`
	Query          string          `json:"query"`
	TaskType       types.TaskType  `json:"task_type"`
	Articles       []types.Article `json:"articles,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	OutputPath     string          `json:"output_path,omitempty"`
	ElapsedSeconds float64         `json:"elapsed_seconds"`
	Error          string          `json:"error,omitempty"`
}

// Agent composes the literature client, the generative client, and a
// document writer. All three are injected.
type Agent struct {
	lit  Literature
	gen  Synthesizer
	docs document.Writer
	out  io.Writer
	log  logrus.FieldLogger
}

// Option configures an Agent.
type Option func(*Agent)

// WithProgress sets the writer that receives per-stage progress lines.
func WithProgress(w io.Writer) Option {
	return func(a *Agent) { a.out = w }
}

// WithLogger sets the structured logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Agent) { a.log = l }
}

// New returns an Agent. Progress output is discarded unless WithProgress
// is given.
func New(lit Literature, gen Synthesizer, docs document.Writer, opts ...Option) *Agent {
	a := &Agent{
		lit:  lit,
		gen:  gen,
		docs: docs,
		out:  io.Discard,
		log:  logrus.WithField("component", "agent"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Research runs search, synthesize, format, and report for query. It always
// returns a Result; Success distinguishes failure.
func (a *Agent) Research(ctx context.Context, query string, task types.TaskType, opts Options) Result {
	start := time.Now()
	res := Result{Query: query, TaskType: task}

	fail := func(stage string, err error) Result {
		a.log.WithFields(logrus.Fields{"stage": stage, "task": task}).WithError(err).Error("research failed")
		res.Error = err.Error()
		res.ElapsedSeconds = time.Since(start).Seconds()
		return res
	}

	fmt.Fprintf(a.out, "Searching PubMed (%s) for: %s\n", opts.Mode(), query)
	articles, err := a.Search(ctx, query, opts)
	if err != nil {
		return fail("search", err)
	}
	if len(articles) == 0 {
		return fail("search", ErrNoArticles)
	}
	res.Articles = articles
	fmt.Fprintf(a.out, "Found %d articles\n", len(articles))

	fmt.Fprintf(a.out, "Generating %s...\n", task)
	text, err := a.synthesize(ctx, query, task, articles, opts)
	if err != nil {
		return fail("synthesize", err)
	}
	res.Summary = text

	path, err := a.format(query, task, articles, text)
	if err != nil {
		return fail("format", err)
	}
	res.OutputPath = path
	fmt.Fprintf(a.out, "Saved to %s\n", path)

	res.Success = true
	res.ElapsedSeconds = time.Since(start).Seconds()
	return res
}

// Search runs the literature search selected by opts.Mode. Clinical and
// recent searches use the client's fixed cap; plain search uses
// opts.MaxResults.
func (a *Agent) Search(ctx context.Context, query string, opts Options) ([]types.Article, error) {
	switch opts.Mode() {
	case types.SearchClinicalTrials:
		return a.lit.SearchClinicalTrialsOnly(ctx, query, opts.Phase)
	case types.SearchRecent:
		return a.lit.SearchRecent(ctx, query, opts.RecentYears)
	default:
		return a.lit.SearchAndEnrich(ctx, query, opts.maxResults())
	}
}

// Abstract fetches the abstract for one PMID.
func (a *Agent) Abstract(ctx context.Context, pmid string) pubmed.AbstractRecord {
	return a.lit.FetchAbstract(ctx, strings.TrimSpace(pmid))
}

func (a *Agent) synthesize(ctx context.Context, query string, task types.TaskType, articles []types.Article, opts Options) (string, error) {
	switch task {
	case types.TaskAbstract:
		return a.gen.GenerateAbstractText(ctx, articles, query)
	case types.TaskKOLBriefing:
		return a.gen.GenerateKOLBriefing(ctx, articles, query)
	case types.TaskCompetitive:
		product := opts.Product
		if product == "" {
			product = query
		}
		return a.gen.GenerateCompetitiveAnalysis(ctx, articles, product, opts.Competitors)
	case types.TaskMedicalInfo:
		return a.gen.GenerateMedicalInfoResponse(ctx, articles, query)
	case types.TaskPaper:
		return a.paper(ctx, query, articles)
	default:
		return a.gen.Summarize(ctx, articles, query, opts.Focus)
	}
}

var paperSections = []struct {
	section types.SectionType
	heading string
}{
	{types.SectionIntroduction, "Introduction"},
	{types.SectionMethods, "Methods"},
	{types.SectionResults, "Results"},
	{types.SectionDiscussion, "Discussion"},
}

// paper generates the four sections in order and joins them under headings.
func (a *Agent) paper(ctx context.Context, topic string, articles []types.Article) (string, error) {
	var b strings.Builder
	for _, s := range paperSections {
		fmt.Fprintf(a.out, "  writing %s\n", s.section)
		text, err := a.gen.GeneratePaperSection(ctx, s.section, articles, topic)
		if err != nil {
			return "", fmt.Errorf("%s section: %w", s.section, err)
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.heading, strings.TrimSpace(text))
	}
	return strings.TrimSpace(b.String()), nil
}

func (a *Agent) format(query string, task types.TaskType, articles []types.Article, text string) (string, error) {
	switch task {
	case types.TaskPaper:
		return a.docs.WritePaper(query, articles, text)
	case types.TaskSlides:
		return a.docs.WriteSlides(query, articles, text)
	default:
		return a.docs.WriteReport(query, task, articles, text)
	}
}
