// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document formats research output as Markdown files: reports for
// the synthesis tasks, paper drafts, and slide outlines. Each file carries a
// YAML frontmatter block and a reference list built from the source articles.
package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/medaffairs/internal/pubmed"
	"github.com/pdiddy/medaffairs/pkg/types"
)

// Writer persists one generated document and returns the path written.
type Writer interface {
	WriteReport(query string, task types.TaskType, articles []types.Article, body string) (string, error)
	WritePaper(query string, articles []types.Article, body string) (string, error)
	WriteSlides(query string, articles []types.Article, body string) (string, error)
}

const (
	timestampLayout = "20060102_150405"
	maxSlugLen      = 50
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	slideBreak   = regexp.MustCompile(`(?m)^[ \t]*---[ \t]*$`)
)

// Frontmatter is the YAML header at the top of every generated file.
type Frontmatter struct {
	Title        string `yaml:"title"`
	Query        string `yaml:"query"`
	Task         string `yaml:"task"`
	Generated    string `yaml:"generated"`
	ArticleCount int    `yaml:"article_count"`
}

// MarkdownWriter writes documents under Dir. Now defaults to time.Now.
type MarkdownWriter struct {
	Dir string
	Now func() time.Time
}

// NewMarkdownWriter returns a writer rooted at dir.
func NewMarkdownWriter(dir string) *MarkdownWriter {
	return &MarkdownWriter{Dir: dir}
}

func (w *MarkdownWriter) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

var taskTitles = map[types.TaskType]string{
	types.TaskSummary:     "Literature Summary",
	types.TaskAbstract:    "Scientific Abstract",
	types.TaskKOLBriefing: "KOL Briefing",
	types.TaskCompetitive: "Competitive Landscape",
	types.TaskMedicalInfo: "Medical Information Response",
	types.TaskPaper:       "Literature Review",
	types.TaskSlides:      "Slide Outline",
}

func title(task types.TaskType, query string) string {
	if t, ok := taskTitles[task]; ok {
		return t + ": " + query
	}
	return query
}

// WriteReport writes a report for one of the synthesis tasks.
func (w *MarkdownWriter) WriteReport(query string, task types.TaskType, articles []types.Article, body string) (string, error) {
	ts := w.now()
	var b bytes.Buffer
	if err := writeFrontmatter(&b, task, query, len(articles), ts); err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "# %s\n\n", title(task, query))
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	writeReferences(&b, articles)

	return w.save(fmt.Sprintf("%s_%s_%s.md", task, Slug(query), ts.Format(timestampLayout)), b.Bytes())
}

// WritePaper writes a paper draft.
func (w *MarkdownWriter) WritePaper(query string, articles []types.Article, body string) (string, error) {
	return w.WriteReport(query, types.TaskPaper, articles, body)
}

// WriteSlides splits body on lines holding only "---" and writes one
// numbered slide per non-empty part, followed by a references slide.
func (w *MarkdownWriter) WriteSlides(query string, articles []types.Article, body string) (string, error) {
	ts := w.now()
	var b bytes.Buffer
	if err := writeFrontmatter(&b, types.TaskSlides, query, len(articles), ts); err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "# %s\n", title(types.TaskSlides, query))

	for i, s := range SplitSlides(body) {
		fmt.Fprintf(&b, "\n---\n\n<!-- slide %d -->\n\n%s\n", i+1, s)
	}
	if len(articles) > 0 {
		b.WriteString("\n---\n")
		writeReferences(&b, articles)
	}

	return w.save(fmt.Sprintf("%s_%s_slides.md", Slug(query), ts.Format(timestampLayout)), b.Bytes())
}

func (w *MarkdownWriter) save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}

func writeFrontmatter(b *bytes.Buffer, task types.TaskType, query string, n int, ts time.Time) error {
	data, err := yaml.Marshal(Frontmatter{
		Title:        title(task, query),
		Query:        query,
		Task:         string(task),
		Generated:    ts.Format(time.RFC3339),
		ArticleCount: n,
	})
	if err != nil {
		return fmt.Errorf("marshaling frontmatter: %w", err)
	}
	b.WriteString("---\n")
	b.Write(data)
	b.WriteString("---\n\n")
	return nil
}

func writeReferences(b *bytes.Buffer, articles []types.Article) {
	if len(articles) == 0 {
		return
	}
	b.WriteString("\n## References\n\n")
	for i, a := range articles {
		fmt.Fprintf(b, "%d. %s\n", i+1, pubmed.FormatCitation(a))
	}
}

// SplitSlides breaks body into trimmed, non-empty slide sections. Without
// any "---" line, each Markdown heading starts a new slide.
func SplitSlides(body string) []string {
	parts := slideBreak.Split(body, -1)
	if len(parts) == 1 {
		parts = splitOnHeadings(body)
	}
	var slides []string
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			slides = append(slides, s)
		}
	}
	return slides
}

func splitOnHeadings(body string) []string {
	var parts []string
	var cur strings.Builder
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "#") && cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
		cur.WriteString("\n")
	}
	return append(parts, cur.String())
}

// Slug lowercases s and collapses runs of other characters to "_".
// The result is at most 50 characters; an empty slug becomes "untitled".
func Slug(s string) string {
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "_"), "_")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "_")
	}
	if slug == "" {
		return "untitled"
	}
	return slug
}

// ReadFrontmatter parses the YAML header of a generated file.
func ReadFrontmatter(path string) (*Frontmatter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	rest, ok := bytes.CutPrefix(data, []byte("---\n"))
	if !ok {
		return nil, fmt.Errorf("%s: missing frontmatter", filepath.Base(path))
	}
	header, _, ok := bytes.Cut(rest, []byte("\n---\n"))
	if !ok {
		return nil, fmt.Errorf("%s: unterminated frontmatter", filepath.Base(path))
	}
	var fm Frontmatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return nil, fmt.Errorf("parsing frontmatter: %w", err)
	}
	return &fm, nil
}
