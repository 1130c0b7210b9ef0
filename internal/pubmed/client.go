// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed wraps the NCBI E-utilities literature search API: query to
// ranked PMID list, PMID list to article metadata, and optional abstract
// enrichment from the efetch XML payload.
package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/medaffairs/internal/httputil"
	"github.com/pdiddy/medaffairs/pkg/types"
)

// DefaultBaseURL is the E-utilities root.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

const (
	serviceName = "pubmed"
	sourceName  = "PubMed"

	// EnrichLimit is how many leading search results get their abstract
	// fetched by SearchAndEnrich, independent of maxResults.
	EnrichLimit = 10

	// filteredSearchCap is the result cap used by the filtered searches.
	filteredSearchCap = 20

	defaultDelay = 350 * time.Millisecond
)

// Client queries PubMed. It holds no state between calls.
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	APIKey    string
	Email     string
	Tool      string
	UserAgent string

	// Delay is the fixed pause between successive abstract fetches.
	Delay time.Duration

	// Now returns the current time; used for date-range filters.
	Now func() time.Time

	Log logrus.FieldLogger
}

// NewClient builds a Client from configuration, filling defaults for an
// empty base URL, delay, and logger.
func NewClient(cfg types.LiteratureConfig) *Client {
	c := &Client{
		BaseURL:   cfg.BaseURL,
		HTTP:      &http.Client{Timeout: cfg.Timeout},
		APIKey:    cfg.APIKey,
		Email:     cfg.Email,
		Tool:      cfg.Tool,
		UserAgent: cfg.UserAgent,
		Delay:     cfg.RequestDelay,
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Delay == 0 {
		c.Delay = defaultDelay
	}
	return c
}

func (c *Client) log() logrus.FieldLogger {
	if c.Log != nil {
		return c.Log
	}
	return logrus.WithField("component", serviceName)
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Search runs an esearch for query and then fetches summary metadata for the
// returned PMIDs. Articles are ordered as the esearch relevance ranking
// orders the PMIDs, and there are at most maxResults of them. No hits yield
// an empty slice, not an error.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]types.Article, error) {
	if maxResults <= 0 {
		maxResults = filteredSearchCap
	}

	ids, err := c.searchIDs(ctx, query, maxResults)
	if err != nil {
		c.log().WithError(err).WithField("query", query).Error("esearch failed")
		return nil, err
	}
	if len(ids) == 0 {
		return []types.Article{}, nil
	}
	if len(ids) > maxResults {
		ids = ids[:maxResults]
	}

	articles, err := c.summaries(ctx, ids)
	if err != nil {
		c.log().WithError(err).WithField("query", query).Error("esummary failed")
		return nil, err
	}
	return articles, nil
}

func (c *Client) searchIDs(ctx context.Context, query string, maxResults int) ([]string, error) {
	params := c.params()
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("retmax", strconv.Itoa(maxResults))
	params.Set("retmode", "json")
	params.Set("sort", "relevance")

	var sr esearchResponse
	if err := c.getJSON(ctx, "esearch.fcgi", params, &sr); err != nil {
		return nil, err
	}
	if msg := firstNonEmpty(sr.Result.Error, sr.Error); msg != "" {
		return nil, &httputil.UpstreamError{Service: serviceName, Msg: "esearch: " + msg}
	}
	return sr.Result.IDList, nil
}

func (c *Client) summaries(ctx context.Context, ids []string) ([]types.Article, error) {
	params := c.params()
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "json")

	var sr esummaryResponse
	if err := c.getJSON(ctx, "esummary.fcgi", params, &sr); err != nil {
		return nil, err
	}
	if msg := firstNonEmpty(sr.Error); msg != "" {
		return nil, &httputil.UpstreamError{Service: serviceName, Msg: "esummary: " + msg}
	}

	articles := make([]types.Article, 0, len(ids))
	for _, id := range ids {
		raw, ok := sr.Result[id]
		if !ok {
			continue
		}
		var doc esummaryDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			c.log().WithError(err).WithField("pmid", id).Warn("skipping malformed summary")
			continue
		}
		articles = append(articles, doc.toArticle(id))
	}
	return articles, nil
}

// params returns the query parameters shared by every E-utilities call.
func (c *Client) params() url.Values {
	v := url.Values{}
	if c.APIKey != "" {
		v.Set("api_key", c.APIKey)
	}
	if c.Email != "" {
		v.Set("email", c.Email)
	}
	if c.Tool != "" {
		v.Set("tool", c.Tool)
	}
	return v
}

func (c *Client) newRequest(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	reqURL := strings.TrimRight(c.BaseURL, "/") + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, v any) error {
	req, err := c.newRequest(ctx, endpoint, params)
	if err != nil {
		return err
	}
	resp, err := httputil.Do(ctx, c.HTTP, req, serviceName)
	if err != nil {
		return err
	}
	return httputil.DecodeJSON(resp, serviceName, v)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// E-utilities JSON structures. Both endpoints report some failures with a
// 200 status and an error string in the body.
type esearchResponse struct {
	Error  string `json:"error"`
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
		Error  string   `json:"ERROR"`
	} `json:"esearchresult"`
}

type esummaryResponse struct {
	Error string `json:"error"`
	// Result maps each PMID to its summary document; it also carries a
	// "uids" array, which is never looked up.
	Result map[string]json.RawMessage `json:"result"`
}

type esummaryDoc struct {
	UID             string            `json:"uid"`
	Title           string            `json:"title"`
	Authors         []esummaryAuthor  `json:"authors"`
	FullJournalName string            `json:"fulljournalname"`
	Source          string            `json:"source"`
	PubDate         string            `json:"pubdate"`
	ArticleIDs      []esummaryArticle `json:"articleids"`
}

type esummaryAuthor struct {
	Name     string `json:"name"`
	AuthType string `json:"authtype"`
}

type esummaryArticle struct {
	IDType string `json:"idtype"`
	Value  string `json:"value"`
}

func (d esummaryDoc) toArticle(id string) types.Article {
	a := types.Article{
		PMID:      id,
		Title:     strings.TrimSpace(d.Title),
		Authors:   []string{},
		Journal:   d.FullJournalName,
		PubDate:   d.PubDate,
		Source:    sourceName,
		MeSHTerms: []string{},
	}
	if a.Journal == "" {
		a.Journal = d.Source
	}
	for _, au := range d.Authors {
		if name := strings.TrimSpace(au.Name); name != "" {
			a.Authors = append(a.Authors, name)
		}
	}
	for _, aid := range d.ArticleIDs {
		if aid.IDType == "doi" {
			a.DOI = aid.Value
			break
		}
	}
	return a
}
