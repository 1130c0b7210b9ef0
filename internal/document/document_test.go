// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/medaffairs/pkg/types"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newWriter(t *testing.T) *MarkdownWriter {
	t.Helper()
	return &MarkdownWriter{Dir: filepath.Join(t.TempDir(), "out"), Now: func() time.Time { return fixedNow }}
}

func articles() []types.Article {
	return []types.Article{
		{PMID: "101", Title: "Semaglutide and weight", Authors: []string{"Smith J", "Doe A"}, Journal: "NEJM", PubDate: "2021 Feb"},
		{PMID: "102", Title: "Cardiovascular outcomes", Journal: "Lancet", PubDate: "2022", DOI: "10.1000/xyz"},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Semaglutide obesity", "semaglutide_obesity"},
		{"  GLP-1 (RA) / T2D?  ", "glp_1_ra_t2d"},
		{"", "untitled"},
		{"!!!", "untitled"},
		{strings.Repeat("ab ", 40), "ab_ab_ab_ab_ab_ab_ab_ab_ab_ab_ab_ab_ab_ab_ab_ab_ab"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Slug(tt.in)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), maxSlugLen)
		})
	}
}

func TestWriteReport(t *testing.T) {
	w := newWriter(t)

	path, err := w.WriteReport("Semaglutide obesity", types.TaskSummary, articles(), "Key findings here.\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(w.Dir, "summary_semaglutide_obesity_20260314_092653.md"), path)

	content := readFile(t, path)
	assert.True(t, strings.HasPrefix(content, "---\n"))
	assert.Contains(t, content, "# Literature Summary: Semaglutide obesity\n")
	assert.Contains(t, content, "Key findings here.")
	assert.Contains(t, content, "## References")
	assert.Contains(t, content, "1. Smith J, Doe A. Semaglutide and weight. NEJM. 2021. PMID: 101.")
	assert.Contains(t, content, "2. Cardiovascular outcomes. Lancet. 2022. PMID: 102. doi:10.1000/xyz")

	fm, err := ReadFrontmatter(path)
	require.NoError(t, err)
	assert.Equal(t, "Semaglutide obesity", fm.Query)
	assert.Equal(t, "summary", fm.Task)
	assert.Equal(t, 2, fm.ArticleCount)
	assert.Equal(t, "2026-03-14T09:26:53Z", fm.Generated)
}

func TestWriteReport_NoArticlesOmitsReferences(t *testing.T) {
	w := newWriter(t)

	path, err := w.WriteReport("q", types.TaskMedicalInfo, nil, "answer")
	require.NoError(t, err)
	assert.NotContains(t, readFile(t, path), "## References")
}

func TestWritePaper(t *testing.T) {
	w := newWriter(t)

	path, err := w.WritePaper("Drug X", articles(), "## Introduction\n\ntext")
	require.NoError(t, err)
	assert.Equal(t, "paper_drug_x_20260314_092653.md", filepath.Base(path))

	fm, err := ReadFrontmatter(path)
	require.NoError(t, err)
	assert.Equal(t, "paper", fm.Task)
	assert.Equal(t, "Literature Review: Drug X", fm.Title)
}

func TestWriteSlides(t *testing.T) {
	w := newWriter(t)
	body := "# Background\n- point\n---\n\n# Data\n- more\n  ---  \n\n---\n# Summary"

	path, err := w.WriteSlides("Drug X", articles(), body)
	require.NoError(t, err)
	assert.Equal(t, "drug_x_20260314_092653_slides.md", filepath.Base(path))

	content := readFile(t, path)
	assert.Contains(t, content, "<!-- slide 1 -->\n\n# Background\n- point")
	assert.Contains(t, content, "<!-- slide 2 -->\n\n# Data\n- more")
	assert.Contains(t, content, "<!-- slide 3 -->\n\n# Summary")
	assert.NotContains(t, content, "<!-- slide 4 -->")
	assert.Contains(t, content, "## References")

	fm, err := ReadFrontmatter(path)
	require.NoError(t, err)
	assert.Equal(t, "slides", fm.Task)
}

func TestSplitSlides(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitSlides("a\n---\nb\n---\n"))
	assert.Nil(t, SplitSlides("  \n---\n  "))
	assert.Equal(t, []string{"no breaks"}, SplitSlides("no breaks"))
	assert.Equal(t, []string{"# One\nx", "## Two\ny"}, SplitSlides("# One\nx\n\n## Two\ny\n"))
}

func TestReadFrontmatter_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.md")
	require.NoError(t, os.WriteFile(path, []byte("# just text\n"), 0o644))

	_, err := ReadFrontmatter(path)
	assert.Error(t, err)
}

func TestWriteReport_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	w := &MarkdownWriter{Dir: filepath.Join(file, "sub")}

	_, err := w.WriteReport("q", types.TaskSummary, nil, "x")
	assert.Error(t, err)
}
