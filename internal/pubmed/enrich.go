// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/medaffairs/pkg/types"
)

// SearchAndEnrich searches and then fetches abstracts for the first
// EnrichLimit articles, merging them by PMID. Articles past the limit keep
// an empty abstract.
func (c *Client) SearchAndEnrich(ctx context.Context, query string, maxResults int) ([]types.Article, error) {
	articles, err := c.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return articles, nil
	}

	n := min(EnrichLimit, len(articles))
	pmids := make([]string, n)
	for i := 0; i < n; i++ {
		pmids[i] = articles[i].PMID
	}

	byPMID := make(map[string]AbstractRecord, n)
	for _, rec := range c.FetchAbstracts(ctx, pmids) {
		byPMID[rec.PMID] = rec
	}
	for i := range articles {
		rec, ok := byPMID[articles[i].PMID]
		if !ok {
			continue
		}
		mergeAbstract(&articles[i], rec)
	}

	c.log().WithField("query", query).WithField("enriched", n).Debug("search enriched")
	return articles, nil
}

// mergeAbstract copies abstract text and MeSH headings into a and fills an
// empty title from the record.
func mergeAbstract(a *types.Article, rec AbstractRecord) {
	a.Abstract = rec.Abstract
	if a.Title == "" && rec.Title != "" {
		a.Title = rec.Title
	}
	if len(a.MeSHTerms) == 0 && len(rec.MeSHTerms) > 0 {
		a.MeSHTerms = rec.MeSHTerms
	}
}

// SearchClinicalTrialsOnly restricts the query to clinical-trial publication
// types, optionally a single phase ("I".."IV" or "1".."4"), and enriches up
// to 20 results.
func (c *Client) SearchClinicalTrialsOnly(ctx context.Context, query, phase string) ([]types.Article, error) {
	q, err := ClinicalTrialsQuery(query, phase)
	if err != nil {
		return nil, err
	}
	return c.SearchAndEnrich(ctx, q, filteredSearchCap)
}

// SearchRecent restricts the query to publications from the last yearsBack
// years (from January 1st of that year) and enriches up to 20 results.
func (c *Client) SearchRecent(ctx context.Context, query string, yearsBack int) ([]types.Article, error) {
	return c.SearchAndEnrich(ctx, RecentQuery(query, yearsBack, c.now().Year()), filteredSearchCap)
}

// ClinicalTrialsQuery AND-s the clinical-trial publication-type clause (and
// the phase clause, when phase is set) onto query.
func ClinicalTrialsQuery(query, phase string) (string, error) {
	q := fmt.Sprintf("(%s) AND (Clinical Trial[Publication Type])", query)
	if strings.TrimSpace(phase) == "" {
		return q, nil
	}
	roman, err := normalizePhase(phase)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s AND (Clinical Trial, Phase %s[Publication Type])", q, roman), nil
}

// RecentQuery AND-s a publication-date range starting yearsBack years before
// currentYear onto query. A non-positive yearsBack defaults to 5.
func RecentQuery(query string, yearsBack, currentYear int) string {
	if yearsBack <= 0 {
		yearsBack = 5
	}
	from := currentYear - yearsBack
	return fmt.Sprintf(`(%s) AND ("%d/01/01"[Date - Publication] : "3000"[Date - Publication])`, query, from)
}

func normalizePhase(phase string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(phase))
	p = strings.TrimPrefix(p, "PHASE")
	p = strings.TrimSpace(p)
	switch p {
	case "1", "I":
		return "I", nil
	case "2", "II":
		return "II", nil
	case "3", "III":
		return "III", nil
	case "4", "IV":
		return "IV", nil
	}
	return "", fmt.Errorf("unknown trial phase %q: use 1-4 or I-IV", phase)
}
