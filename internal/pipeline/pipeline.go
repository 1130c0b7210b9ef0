// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the multi-agent research workflow: literature review
// and hypothesis generation, methodology planning, analysis, and paper
// writing. Stages run strictly in sequence and each writes a JSON checkpoint
// to the project directory before the next begins. There is no automatic
// resume; checkpoints can be reloaded with LoadCheckpoint.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/medaffairs/internal/llm"
	"github.com/pdiddy/medaffairs/internal/pubmed"
	"github.com/pdiddy/medaffairs/pkg/types"
)

// DefaultMaxResults is the literature cap for the ideation search.
const DefaultMaxResults = 20

// Stage is the value recorded under State["stage"].
type Stage string

const (
	StageCreated   Stage = "created"
	StageIdeation  Stage = "ideation"
	StagePlanning  Stage = "planning"
	StageExecution Stage = "execution"
	StageWriting   Stage = "writing"
	StageDone      Stage = "done"
)

// DataSources is the fixed set attached to every plan.
var DataSources = []string{"PubMed", "ClinicalTrials.gov", "FDA FAERS"}

// timelinePlaceholder fills Plan.Timeline.
const timelinePlaceholder = "TBD"

// ErrNoArticles is returned when the ideation search finds nothing.
var ErrNoArticles = errors.New("no articles found for query")

// Literature is the search the ideation stage runs.
type Literature interface {
	SearchAndEnrich(ctx context.Context, query string, maxResults int) ([]types.Article, error)
}

// Generator is the generative call each stage makes.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error)
}

// RunOptions tune one pipeline run.
type RunOptions struct {
	// HumanReview is recorded in project state. It is not enforced.
	HumanReview bool
	MaxResults  int
}

// Report is the in-memory outcome of a run. Fields are filled stage by
// stage, so a failed run returns the report up to the failing stage.
type Report struct {
	Project    *types.Project          `json:"project"`
	Articles   []types.Article         `json:"articles"`
	Hypotheses []types.Hypothesis      `json:"hypotheses"`
	Plans      []types.Plan            `json:"plans"`
	Results    []types.ExecutionResult `json:"results"`
	Papers     []types.Paper           `json:"papers"`
}

// IdeationCheckpoint is the content of ideation.json.
type IdeationCheckpoint struct {
	Query      string             `json:"query"`
	Articles   []types.Article    `json:"articles"`
	Response   string             `json:"response"`
	Hypotheses []types.Hypothesis `json:"hypotheses"`
}

// Pipeline holds the injected collaborators for a run.
type Pipeline struct {
	lit    Literature
	gen    Generator
	ws     *Workspace
	interp Interpreter
	out    io.Writer
	log    logrus.FieldLogger
	now    func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithInterpreter replaces the HeuristicInterpreter.
func WithInterpreter(i Interpreter) Option {
	return func(p *Pipeline) { p.interp = i }
}

// WithProgress sets the writer that receives per-stage progress lines.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) { p.out = w }
}

// WithLogger sets the structured logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithClock sets the time source for result and paper timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New returns a Pipeline writing projects under ws.
func New(lit Literature, gen Generator, ws *Workspace, opts ...Option) *Pipeline {
	p := &Pipeline{
		lit:    lit,
		gen:    gen,
		ws:     ws,
		interp: HeuristicInterpreter{},
		out:    io.Discard,
		log:    logrus.WithField("component", "pipeline"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes every stage for query. Any stage error stops the run and is
// returned wrapped with the stage name, together with the partial report.
func (p *Pipeline) Run(ctx context.Context, query string, opts RunOptions) (*Report, error) {
	project, err := p.ws.CreateProject(query)
	if err != nil {
		return nil, err
	}
	project.State["human_review"] = opts.HumanReview
	if err := SaveCheckpoint(project, CheckpointInitial, project); err != nil {
		return nil, err
	}

	r := &Report{Project: project}
	log := p.log.WithField("project", project.ID)
	fmt.Fprintf(p.out, "Project %s (%s)\n", project.ID, project.Dir)

	stages := []struct {
		stage Stage
		run   func(context.Context, *Report, RunOptions) error
	}{
		{StageIdeation, p.ideate},
		{StagePlanning, p.plan},
		{StageExecution, p.execute},
		{StageWriting, p.write},
	}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return r, fmt.Errorf("%s: %w", s.stage, err)
		}
		if err := setStage(project, s.stage); err != nil {
			return r, fmt.Errorf("%s: %w", s.stage, err)
		}
		fmt.Fprintf(p.out, "== %s ==\n", s.stage)
		if err := s.run(ctx, r, opts); err != nil {
			log.WithField("stage", s.stage).WithError(err).Error("pipeline stage failed")
			return r, fmt.Errorf("%s: %w", s.stage, err)
		}
	}
	if err := setStage(project, StageDone); err != nil {
		return r, err
	}
	log.WithField("papers", len(r.Papers)).Info("pipeline complete")
	return r, nil
}

func (p *Pipeline) ideate(ctx context.Context, r *Report, opts RunOptions) error {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	articles, err := p.lit.SearchAndEnrich(ctx, r.Project.Query, maxResults)
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		return ErrNoArticles
	}
	r.Articles = articles
	fmt.Fprintf(p.out, "reviewed %d articles\n", len(articles))
	if err := writeArticles(filepath.Join(r.Project.Dir, LiteratureDir, "articles.json"), articles); err != nil {
		return err
	}

	prompt, err := ideationPrompt(r.Project.Query, articles)
	if err != nil {
		return err
	}
	text, err := p.gen.Generate(ctx, prompt, llm.WithTemperature(ideationTemperature))
	if err != nil {
		return err
	}

	for _, h := range p.interp.ParseHypotheses(text, articles) {
		if h.PassedReview {
			r.Hypotheses = append(r.Hypotheses, h)
		}
	}
	fmt.Fprintf(p.out, "generated %d hypotheses\n", len(r.Hypotheses))

	return SaveCheckpoint(r.Project, CheckpointIdeation, IdeationCheckpoint{
		Query:      r.Project.Query,
		Articles:   articles,
		Response:   text,
		Hypotheses: r.Hypotheses,
	})
}

func (p *Pipeline) plan(ctx context.Context, r *Report, _ RunOptions) error {
	for i, h := range r.Hypotheses {
		prompt, err := planningPrompt(h)
		if err != nil {
			return err
		}
		text, err := p.gen.Generate(ctx, prompt, llm.WithTemperature(planningTemperature))
		if err != nil {
			return fmt.Errorf("hypothesis %d: %w", i+1, err)
		}
		r.Plans = append(r.Plans, types.Plan{
			Hypothesis:  h,
			Methodology: text,
			DataSources: append([]string(nil), DataSources...),
			Timeline:    timelinePlaceholder,
		})
		fmt.Fprintf(p.out, "planned hypothesis %d/%d\n", i+1, len(r.Hypotheses))
	}
	return SaveCheckpoint(r.Project, CheckpointPlanning, r.Plans)
}

func (p *Pipeline) execute(ctx context.Context, r *Report, _ RunOptions) error {
	for i, plan := range r.Plans {
		prompt, err := executionPrompt(plan)
		if err != nil {
			return err
		}
		text, err := p.gen.Generate(ctx, prompt, llm.WithTemperature(executionTemperature))
		if err != nil {
			return fmt.Errorf("plan %d: %w", i+1, err)
		}
		res := types.ExecutionResult{
			Plan:           plan,
			Analysis:       text,
			Status:         types.ExecutionCompleted,
			NegativeResult: p.interp.IsNegativeResult(text),
			Timestamp:      p.now().UTC(),
		}
		r.Results = append(r.Results, res)
		fmt.Fprintf(p.out, "analysed plan %d/%d (negative result: %t)\n", i+1, len(r.Plans), res.NegativeResult)
	}
	return SaveCheckpoint(r.Project, CheckpointExecution, r.Results)
}

func (p *Pipeline) write(ctx context.Context, r *Report, _ RunOptions) error {
	for i, res := range r.Results {
		prompt, err := writingPrompt(res)
		if err != nil {
			return err
		}
		text, err := p.gen.Generate(ctx, prompt, llm.WithTemperature(writingTemperature))
		if err != nil {
			return fmt.Errorf("result %d: %w", i+1, err)
		}
		r.Papers = append(r.Papers, types.Paper{
			Content:        text,
			Hypothesis:     res.Plan.Hypothesis.Statement,
			NegativeResult: res.NegativeResult,
			Timestamp:      p.now().UTC(),
		})
		draft := filepath.Join(r.Project.Dir, DraftsDir, fmt.Sprintf("paper_%02d.md", i+1))
		if err := os.WriteFile(draft, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing draft: %w", err)
		}
		fmt.Fprintf(p.out, "wrote %s\n", draft)
	}
	return SaveCheckpoint(r.Project, CheckpointPapers, r.Papers)
}

// setStage records stage in the project state and re-saves the project
// snapshot so the initial checkpoint always names the current stage.
func setStage(project *types.Project, stage Stage) error {
	project.State["stage"] = string(stage)
	return SaveCheckpoint(project, CheckpointInitial, project)
}

// LoadReport rebuilds a report from the checkpoints present in dir. Missing
// later checkpoints leave the corresponding fields empty.
func LoadReport(dir string) (*Report, error) {
	project, err := LoadProject(dir)
	if err != nil {
		return nil, err
	}
	r := &Report{Project: project}

	var ideation IdeationCheckpoint
	steps := []struct {
		name Checkpoint
		v    any
	}{
		{CheckpointIdeation, &ideation},
		{CheckpointPlanning, &r.Plans},
		{CheckpointExecution, &r.Results},
		{CheckpointPapers, &r.Papers},
	}
	for _, s := range steps {
		if _, err := os.Stat(filepath.Join(dir, s.name.File())); errors.Is(err, os.ErrNotExist) {
			break
		}
		if err := LoadCheckpoint(dir, s.name, s.v); err != nil {
			return nil, err
		}
	}
	r.Articles = ideation.Articles
	r.Hypotheses = ideation.Hypotheses
	return r, nil
}

func writeArticles(path string, articles []types.Article) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing literature: %w", err)
	}
	if err := pubmed.FormatJSON(articles, f); err != nil {
		f.Close()
		return fmt.Errorf("writing literature: %w", err)
	}
	return f.Close()
}
