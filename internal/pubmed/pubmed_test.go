// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/medaffairs/internal/httputil"
	"github.com/pdiddy/medaffairs/pkg/types"
)

// --- fake E-utilities server ---

type fakeEutils struct {
	mu       sync.Mutex
	ids      []string
	terms    []string
	fetched  []string
	abstract func(pmid string) string
	status   int

	// searchError and summaryError are returned in a 200 body.
	searchError  string
	summaryError string
	// omit lists PMIDs left out of the esummary payload.
	omit map[string]bool
}

func (f *fakeEutils) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		f.mu.Lock()
		f.terms = append(f.terms, r.URL.Query().Get("term"))
		f.mu.Unlock()
		if f.searchError != "" {
			json.NewEncoder(w).Encode(map[string]any{
				"esearchresult": map[string]any{"ERROR": f.searchError},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"esearchresult": map[string]any{
				"count":  fmt.Sprint(len(f.ids)),
				"idlist": f.ids,
			},
		})
	})
	mux.HandleFunc("/esummary.fcgi", func(w http.ResponseWriter, r *http.Request) {
		if f.summaryError != "" {
			json.NewEncoder(w).Encode(map[string]any{"error": f.summaryError})
			return
		}
		ids := strings.Split(r.URL.Query().Get("id"), ",")
		result := map[string]any{"uids": ids}
		for _, id := range ids {
			if f.omit[id] {
				continue
			}
			result[id] = map[string]any{
				"uid":             id,
				"title":           "Title " + id,
				"authors":         []map[string]string{{"name": "Smith J"}, {"name": "Doe A"}},
				"fulljournalname": "Journal of Tests",
				"pubdate":         "2023 Mar 14",
				"articleids":      []map[string]string{{"idtype": "pubmed", "value": id}, {"idtype": "doi", "value": "10.1000/" + id}},
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"result": result})
	})
	mux.HandleFunc("/efetch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		f.mu.Lock()
		f.fetched = append(f.fetched, id)
		f.mu.Unlock()
		if f.abstract != nil {
			w.Write([]byte(f.abstract(id)))
			return
		}
		w.Write([]byte(efetchXML(id, "Abstract for "+id)))
	})
	return mux
}

func efetchXML(pmid, abstract string) string {
	return `<?xml version="1.0"?>
<PubmedArticleSet><PubmedArticle><MedlineCitation>
<PMID>` + pmid + `</PMID>
<Article><Journal><JournalIssue><PubDate><Year>2022</Year></PubDate></JournalIssue></Journal>
<ArticleTitle>Fetched <i>title</i> ` + pmid + `</ArticleTitle>
<Abstract><AbstractText>` + abstract + `</AbstractText></Abstract></Article>
<MeshHeadingList><MeshHeading><DescriptorName>Diabetes Mellitus, Type 2</DescriptorName></MeshHeading></MeshHeadingList>
</MedlineCitation></PubmedArticle></PubmedArticleSet>`
}

func testClient(t *testing.T, f *fakeEutils) *Client {
	t.Helper()
	ts := httptest.NewServer(f.handler())
	t.Cleanup(ts.Close)

	c := NewClient(types.LiteratureConfig{
		BaseURL:      ts.URL,
		RequestDelay: time.Millisecond,
	})
	c.HTTP = ts.Client()
	return c
}

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprint(1000 + i)
	}
	return out
}

// --- Search ---

func TestSearch_ReturnsArticlesInIdentifierOrder(t *testing.T) {
	f := &fakeEutils{ids: []string{"5", "3", "9", "1", "7"}}
	c := testClient(t, f)

	articles, err := c.Search(context.Background(), "semaglutide", 5)
	require.NoError(t, err)
	require.Len(t, articles, 5)

	for i, a := range articles {
		assert.Equal(t, f.ids[i], a.PMID)
		assert.NotEmpty(t, a.Title)
		assert.Equal(t, "", a.Abstract)
		assert.Equal(t, "PubMed", a.Source)
		assert.Equal(t, "10.1000/"+a.PMID, a.DOI)
		assert.Equal(t, []string{"Smith J", "Doe A"}, a.Authors)
		assert.Equal(t, "2023", a.Year())
	}
}

func TestSearch_NoHitsIsEmptyNotError(t *testing.T) {
	c := testClient(t, &fakeEutils{})

	articles, err := c.Search(context.Background(), "nothing", 5)
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
}

func TestSearch_SkipsIdentifiersMissingFromSummary(t *testing.T) {
	f := &fakeEutils{ids: []string{"5", "3", "9", "1"}, omit: map[string]bool{"3": true}}
	c := testClient(t, f)

	articles, err := c.Search(context.Background(), "semaglutide", 4)
	require.NoError(t, err)

	got := make([]string, len(articles))
	for i, a := range articles {
		got[i] = a.PMID
	}
	assert.Equal(t, []string{"5", "9", "1"}, got)
}

func TestSearch_ErrorInSearchBodyIsUpstreamError(t *testing.T) {
	c := testClient(t, &fakeEutils{ids: []string{"1"}, searchError: "Invalid query syntax"})

	articles, err := c.Search(context.Background(), "((", 5)
	require.Error(t, err)
	assert.Nil(t, articles)

	var ue *httputil.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Contains(t, ue.Msg, "Invalid query syntax")
}

func TestSearch_ErrorInSummaryBodyIsUpstreamError(t *testing.T) {
	c := testClient(t, &fakeEutils{ids: []string{"1", "2"}, summaryError: "API rate limit exceeded"})

	_, err := c.Search(context.Background(), "semaglutide", 5)
	var ue *httputil.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Contains(t, ue.Msg, "esummary: API rate limit exceeded")
}

func TestSearch_CapsAtMaxResults(t *testing.T) {
	c := testClient(t, &fakeEutils{ids: ids(8)})

	articles, err := c.Search(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Len(t, articles, 3)
}

func TestSearch_UpstreamError(t *testing.T) {
	c := testClient(t, &fakeEutils{status: http.StatusServiceUnavailable})

	_, err := c.Search(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
}

// --- FetchAbstract ---

func TestFetchAbstract_ParsesStructuredAbstract(t *testing.T) {
	f := &fakeEutils{abstract: func(id string) string {
		return `<PubmedArticleSet><PubmedArticle><MedlineCitation><PMID>` + id + `</PMID><Article>
<Journal><JournalIssue><PubDate><MedlineDate>2019 Nov-Dec</MedlineDate></PubDate></JournalIssue></Journal>
<ArticleTitle>A &amp; B</ArticleTitle>
<Abstract>
<AbstractText Label="BACKGROUND">Obesity is common.</AbstractText>
<AbstractText Label="RESULTS">Weight fell by 15%.</AbstractText>
</Abstract></Article></MedlineCitation></PubmedArticle></PubmedArticleSet>`
	}}
	c := testClient(t, f)

	rec := c.FetchAbstract(context.Background(), "42")
	assert.Empty(t, rec.Error)
	assert.Equal(t, "42", rec.PMID)
	assert.Equal(t, "A & B", rec.Title)
	assert.Equal(t, "2019", rec.Year)
	assert.Equal(t, "BACKGROUND: Obesity is common.\n\nRESULTS: Weight fell by 15%.", rec.Abstract)
}

func TestFetchAbstract_InlineMarkupKeepsText(t *testing.T) {
	c := testClient(t, &fakeEutils{})

	rec := c.FetchAbstract(context.Background(), "7")
	assert.Empty(t, rec.Error)
	assert.Equal(t, "Fetched title 7", rec.Title)
	assert.Equal(t, "2022", rec.Year)
	assert.Equal(t, []string{"Diabetes Mellitus, Type 2"}, rec.MeSHTerms)
}

func TestFetchAbstract_MalformedMarkupNeverFails(t *testing.T) {
	payloads := []string{
		"not xml at all",
		"<PubmedArticleSet><PubmedArticle><MedlineCitation>",
		"<html><body>Service unavailable</body></html>",
	}
	for _, p := range payloads {
		t.Run(p, func(t *testing.T) {
			c := testClient(t, &fakeEutils{abstract: func(string) string { return p }})

			rec := c.FetchAbstract(context.Background(), "1")
			assert.Equal(t, "1", rec.PMID)
			assert.Equal(t, "", rec.Abstract)
			assert.NotEmpty(t, rec.Error)
		})
	}
}

func TestFetchAbstract_UpstreamFailureRecorded(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := NewClient(types.LiteratureConfig{BaseURL: ts.URL})
	rec := c.FetchAbstract(context.Background(), "1")
	assert.Equal(t, "", rec.Abstract)
	assert.Contains(t, rec.Error, "HTTP 502")
}

func TestFetchAbstracts_AlignedWithInput(t *testing.T) {
	f := &fakeEutils{}
	c := testClient(t, f)

	recs := c.FetchAbstracts(context.Background(), []string{"3", "1", "2"})
	require.Len(t, recs, 3)
	for i, id := range []string{"3", "1", "2"} {
		assert.Equal(t, id, recs[i].PMID)
		assert.Equal(t, "Abstract for "+id, recs[i].Abstract)
	}
	assert.Equal(t, []string{"3", "1", "2"}, f.fetched)
}

func TestFetchAbstracts_CancelledContext(t *testing.T) {
	c := testClient(t, &fakeEutils{})
	c.Delay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	recs := c.FetchAbstracts(ctx, []string{"1", "2", "3"})
	require.Len(t, recs, 3)
	assert.Empty(t, recs[0].Error)
	assert.NotEmpty(t, recs[1].Error)
	assert.NotEmpty(t, recs[2].Error)
}

// --- SearchAndEnrich ---

func TestSearchAndEnrich_EnrichesOnlyFirstTen(t *testing.T) {
	f := &fakeEutils{ids: ids(15)}
	c := testClient(t, f)

	articles, err := c.SearchAndEnrich(context.Background(), "q", 15)
	require.NoError(t, err)
	require.Len(t, articles, 15)

	for i, a := range articles {
		if i < EnrichLimit {
			assert.Equal(t, "Abstract for "+a.PMID, a.Abstract, "article %d", i)
			assert.Equal(t, []string{"Diabetes Mellitus, Type 2"}, a.MeSHTerms)
		} else {
			assert.Equal(t, "", a.Abstract, "article %d", i)
		}
	}
	assert.Len(t, f.fetched, EnrichLimit)
}

func TestSearchAndEnrich_FewerThanLimit(t *testing.T) {
	f := &fakeEutils{ids: ids(4)}
	c := testClient(t, f)

	articles, err := c.SearchAndEnrich(context.Background(), "q", 20)
	require.NoError(t, err)
	assert.Len(t, articles, 4)
	assert.Len(t, f.fetched, 4)
}

func TestSearchClinicalTrialsOnly_AugmentsQuery(t *testing.T) {
	f := &fakeEutils{ids: ids(1)}
	c := testClient(t, f)

	_, err := c.SearchClinicalTrialsOnly(context.Background(), "tirzepatide", "3")
	require.NoError(t, err)
	require.Len(t, f.terms, 1)
	assert.Equal(t,
		"(tirzepatide) AND (Clinical Trial[Publication Type]) AND (Clinical Trial, Phase III[Publication Type])",
		f.terms[0])
}

func TestSearchRecent_AugmentsQuery(t *testing.T) {
	f := &fakeEutils{ids: ids(1)}
	c := testClient(t, f)
	c.Now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }

	_, err := c.SearchRecent(context.Background(), "GLP-1", 3)
	require.NoError(t, err)
	require.Len(t, f.terms, 1)
	assert.Equal(t, `(GLP-1) AND ("2023/01/01"[Date - Publication] : "3000"[Date - Publication])`, f.terms[0])
}

func TestClinicalTrialsQuery(t *testing.T) {
	tests := []struct {
		phase   string
		want    string
		wantErr bool
	}{
		{"", "(q) AND (Clinical Trial[Publication Type])", false},
		{"II", "(q) AND (Clinical Trial[Publication Type]) AND (Clinical Trial, Phase II[Publication Type])", false},
		{"phase 4", "(q) AND (Clinical Trial[Publication Type]) AND (Clinical Trial, Phase IV[Publication Type])", false},
		{"7", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.phase, func(t *testing.T) {
			got, err := ClinicalTrialsQuery("q", tt.phase)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// --- formatting ---

func TestFormatCitation(t *testing.T) {
	tests := []struct {
		name    string
		article types.Article
		want    string
	}{
		{
			name: "full record",
			article: types.Article{
				PMID: "123", Title: "Semaglutide and weight.", Journal: "N Engl J Med",
				PubDate: "2021 Mar 18", Authors: []string{"Wilding JPH", "Batterham RL"}, DOI: "10.1056/x",
			},
			want: "Wilding JPH, Batterham RL. Semaglutide and weight. N Engl J Med. 2021. PMID: 123. doi:10.1056/x",
		},
		{
			name: "many authors",
			article: types.Article{
				PMID: "1", Title: "T", Authors: []string{"A", "B", "C", "D"},
			},
			want: "A, B, C, et al. T. PMID: 1.",
		},
		{
			name:    "no authors or journal",
			article: types.Article{PMID: "9", Title: "Only title"},
			want:    "Only title. PMID: 9.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCitation(tt.article))
		})
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, &buf)
	assert.Contains(t, buf.String(), "No articles found.")

	buf.Reset()
	FormatTable([]types.Article{{PMID: "1", Title: strings.Repeat("x", 80), PubDate: "2020"}}, &buf)
	out := buf.String()
	assert.Contains(t, out, "1 articles")
	assert.Contains(t, out, "...")
}

func TestFormatTable_MultibyteTitleStaysValid(t *testing.T) {
	var buf bytes.Buffer
	title := strings.Repeat("a", 56) + "αβγδεζ"
	FormatTable([]types.Article{{PMID: "1", Title: title, PubDate: "2020"}}, &buf)

	out := buf.String()
	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, strings.Repeat("a", 56)+"α...")
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON([]types.Article{{PMID: "1", Title: "T"}}, &buf))

	var got []types.Article
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].PMID)
}
