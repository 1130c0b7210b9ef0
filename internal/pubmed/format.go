// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/medaffairs/internal/textutil"
	"github.com/pdiddy/medaffairs/pkg/types"
)

// maxCitedAuthors is how many authors a citation lists before "et al.".
const maxCitedAuthors = 3

// FormatCitation renders a as a single-line reference:
//
//	Smith J, Doe A, Lee K, et al. Title. Journal. 2023. PMID: 123. doi:10.1000/x
//
// Empty fields are omitted. It performs no I/O.
func FormatCitation(a types.Article) string {
	var parts []string

	if authors := citationAuthors(a.Authors); authors != "" {
		parts = append(parts, authors)
	}
	if t := strings.TrimRight(strings.TrimSpace(a.Title), "."); t != "" {
		parts = append(parts, t)
	}
	if a.Journal != "" {
		parts = append(parts, strings.TrimRight(a.Journal, "."))
	}
	if y := a.Year(); y != "" {
		parts = append(parts, y)
	}
	if a.PMID != "" {
		parts = append(parts, "PMID: "+a.PMID)
	}

	s := strings.Join(parts, ". ")
	if s != "" {
		s += "."
	}
	if a.DOI != "" {
		s += " doi:" + a.DOI
	}
	return strings.TrimSpace(s)
}

func citationAuthors(authors []string) string {
	if len(authors) == 0 {
		return ""
	}
	if len(authors) <= maxCitedAuthors {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:maxCitedAuthors], ", ") + ", et al"
}

// FormatTable writes articles as a human-readable table to w.
func FormatTable(articles []types.Article, w io.Writer) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No articles found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-10s  %-60s  %-20s  %-4s  %s\n",
		"Rank", "PMID", "Title", "Authors", "Year", "Journal")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, a := range articles {
		fmt.Fprintf(w, "%-4d  %-10s  %-60s  %-20s  %-4s  %s\n",
			i+1, a.PMID, truncate(a.Title, 60), formatAuthors(a.Authors), a.Year(), truncate(a.Journal, 30))
	}

	fmt.Fprintf(w, "\n%d articles\n", len(articles))
}

// FormatJSON writes articles as indented JSON to w.
func FormatJSON(articles []types.Article, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(articles)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	return textutil.Ellipsize(s, max)
}
