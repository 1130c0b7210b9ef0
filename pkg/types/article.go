// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the medaffairs workflows.
// Covers literature records (Article), the multi-agent pipeline entities
// (Hypothesis, Plan, ExecutionResult, Paper, Project), the closed task and
// section enums, and configuration.
package types

// Article represents one literature-search hit. The PMID is always set for
// articles returned by search; Abstract stays "" until enrichment merges the
// fetched abstract text.
type Article struct {
	// PMID is the stable external key of the record in PubMed.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title as returned by the summary endpoint.
	Title string `json:"title" yaml:"title"`

	// Authors lists author display names in source order. May be empty.
	Authors []string `json:"authors" yaml:"authors"`

	// Journal is the full journal name. May be empty.
	Journal string `json:"journal" yaml:"journal"`

	// PubDate is the loosely formatted publication date (e.g. "2023 Mar 14").
	// The first four characters are the year when present.
	PubDate string `json:"pub_date" yaml:"pub_date"`

	// Source names the database the record came from (e.g. "PubMed").
	Source string `json:"source" yaml:"source"`

	// DOI is the digital object identifier. May be empty.
	DOI string `json:"doi" yaml:"doi"`

	// Abstract is the full abstract text, filled in by enrichment.
	Abstract string `json:"abstract" yaml:"abstract"`

	// MeSHTerms lists subject-heading descriptors in source order.
	MeSHTerms []string `json:"mesh_terms" yaml:"mesh_terms"`
}

// Year returns the first four characters of PubDate, or "" when the date is
// shorter than a year.
func (a Article) Year() string {
	if len(a.PubDate) < 4 {
		return ""
	}
	return a.PubDate[:4]
}
