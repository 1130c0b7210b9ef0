// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/medaffairs/internal/agent"
	"github.com/pdiddy/medaffairs/internal/pubmed"
	"github.com/pdiddy/medaffairs/pkg/types"
)

type fakeResearcher struct {
	articles []types.Article
	err      error
	opts     agent.Options
	task     types.TaskType
	result   agent.Result
}

func (f *fakeResearcher) Search(_ context.Context, _ string, opts agent.Options) ([]types.Article, error) {
	f.opts = opts
	return f.articles, f.err
}

func (f *fakeResearcher) Abstract(_ context.Context, pmid string) pubmed.AbstractRecord {
	return pubmed.AbstractRecord{PMID: pmid, Abstract: "text"}
}

func (f *fakeResearcher) Research(_ context.Context, query string, task types.TaskType, opts agent.Options) agent.Result {
	f.task, f.opts = task, opts
	r := f.result
	r.Query, r.TaskType = query, task
	return r
}

func do(t *testing.T, f *fakeResearcher, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	New(f, "test").Routes().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, &fakeResearcher{}, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"test"}`, rec.Body.String())
}

func TestSearch(t *testing.T) {
	f := &fakeResearcher{articles: []types.Article{{PMID: "1", Title: "A"}}}
	rec := do(t, f, http.MethodGet, "/api/search?q=semaglutide&max=5&clinical=true&phase=III", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got []types.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)
	assert.Equal(t, agent.Options{MaxResults: 5, Clinical: true, Phase: "III"}, f.opts)
}

func TestSearch_EmptyIsArray(t *testing.T) {
	rec := do(t, &fakeResearcher{}, http.MethodGet, "/api/search?q=x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSearch_BadRequests(t *testing.T) {
	for _, target := range []string{
		"/api/search",
		"/api/search?q=x&max=abc",
		"/api/search?q=x&max=-1",
		"/api/search?q=x&recent=soon",
		"/api/search?q=x&clinical=maybe",
	} {
		rec := do(t, &fakeResearcher{}, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestSearch_UpstreamFailure(t *testing.T) {
	rec := do(t, &fakeResearcher{err: errors.New("pubmed returned HTTP 503")}, http.MethodGet, "/api/search?q=x", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "503")
}

func TestAbstract(t *testing.T) {
	rec := do(t, &fakeResearcher{}, http.MethodGet, "/api/abstracts/12345", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pmid":"12345"`)

	rec = do(t, &fakeResearcher{}, http.MethodGet, "/api/abstracts/not-a-pmid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResearch(t *testing.T) {
	f := &fakeResearcher{result: agent.Result{Success: true, Summary: "done", OutputPath: "out/x.md"}}
	rec := do(t, f, http.MethodPost, "/api/research",
		`{"query":"obesity","task":"kol","recent_years":3,"focus":["safety"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var res agent.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "obesity", res.Query)
	assert.Equal(t, types.TaskKOLBriefing, f.task)
	assert.Equal(t, 3, f.opts.RecentYears)
	assert.Equal(t, []string{"safety"}, f.opts.Focus)
}

func TestResearch_FailureIs422(t *testing.T) {
	f := &fakeResearcher{result: agent.Result{Error: "No articles found for query"}}
	rec := do(t, f, http.MethodPost, "/api/research", `{"query":"nothing"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "No articles found for query")
	assert.Equal(t, types.TaskSummary, f.task)
}

func TestResearch_BadRequests(t *testing.T) {
	for _, body := range []string{
		`not json`,
		`{"task":"summary"}`,
		`{"query":"q","task":"poem"}`,
		`{"query":"q","unknown":1}`,
	} {
		rec := do(t, &fakeResearcher{}, http.MethodPost, "/api/research", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestResearch_MethodNotAllowed(t *testing.T) {
	rec := do(t, &fakeResearcher{}, http.MethodGet, "/api/research", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
