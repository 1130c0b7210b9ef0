// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/pdiddy/medaffairs/internal/httputil"
)

// AbstractRecord is the best-effort result of fetching one abstract. Error is
// set, and Abstract left "", when the fetch or the parse failed.
type AbstractRecord struct {
	PMID      string   `json:"pmid"`
	Abstract  string   `json:"abstract"`
	Title     string   `json:"title,omitempty"`
	Year      string   `json:"year,omitempty"`
	MeSHTerms []string `json:"mesh_terms,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// ParseError reports that an efetch payload could not be interpreted. It is
// never returned to callers of FetchAbstract; it only fills AbstractRecord.Error.
type ParseError struct {
	PMID string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing abstract for PMID %s: %s", e.PMID, e.Msg)
}

// FetchAbstract fetches the efetch XML for one PMID and extracts the abstract,
// title, publication year, and MeSH headings. It never returns an error:
// transport, upstream, and parse failures are recorded in the Error field.
func (c *Client) FetchAbstract(ctx context.Context, pmid string) AbstractRecord {
	rec := AbstractRecord{PMID: pmid}

	body, err := c.fetchXML(ctx, pmid)
	if err != nil {
		c.log().WithError(err).WithField("pmid", pmid).Warn("abstract fetch failed")
		rec.Error = err.Error()
		return rec
	}

	parsed, err := parseAbstractXML(pmid, body)
	parsed.PMID = pmid
	if err != nil {
		c.log().WithError(err).WithField("pmid", pmid).Warn("abstract parse failed")
		parsed.Abstract = ""
		parsed.Error = err.Error()
	}
	return parsed
}

// FetchAbstracts fetches each PMID in order, pausing Delay between successive
// requests. The returned records are aligned with pmids. If ctx is cancelled
// the remaining records carry the context error.
func (c *Client) FetchAbstracts(ctx context.Context, pmids []string) []AbstractRecord {
	records := make([]AbstractRecord, len(pmids))
	pacer := httputil.NewPacer(c.Delay)
	for i, pmid := range pmids {
		if err := pacer.Wait(ctx); err != nil {
			for j := i; j < len(pmids); j++ {
				records[j] = AbstractRecord{PMID: pmids[j], Error: err.Error()}
			}
			break
		}
		records[i] = c.FetchAbstract(ctx, pmid)
	}
	return records
}

func (c *Client) fetchXML(ctx context.Context, pmid string) ([]byte, error) {
	params := c.params()
	params.Set("db", "pubmed")
	params.Set("id", pmid)
	params.Set("retmode", "xml")

	req, err := c.newRequest(ctx, "efetch.fcgi", params)
	if err != nil {
		return nil, err
	}
	resp, err := httputil.Do(ctx, c.HTTP, req, serviceName)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &httputil.NetworkError{Service: serviceName, Err: err}
	}
	return body, nil
}

// efetch XML structures. Text-bearing elements use innerxml so inline markup
// (<i>, <sup>) does not drop text; tags are stripped afterwards.
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Title    innerText `xml:"ArticleTitle"`
			Abstract struct {
				Texts []abstractText `xml:"AbstractText"`
			} `xml:"Abstract"`
			Journal struct {
				PubDate struct {
					Year        string `xml:"Year"`
					MedlineDate string `xml:"MedlineDate"`
				} `xml:"JournalIssue>PubDate"`
			} `xml:"Journal"`
		} `xml:"Article"`
		MeSH []struct {
			Descriptor string `xml:"DescriptorName"`
		} `xml:"MeshHeadingList>MeshHeading"`
	} `xml:"MedlineCitation"`
}

type innerText struct {
	Inner string `xml:",innerxml"`
}

type abstractText struct {
	Label string `xml:"Label,attr"`
	Inner string `xml:",innerxml"`
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

func cleanText(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

func parseAbstractXML(pmid string, body []byte) (AbstractRecord, error) {
	var set pubmedArticleSet
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&set); err != nil {
		return AbstractRecord{}, &ParseError{PMID: pmid, Msg: err.Error()}
	}
	if len(set.Articles) == 0 {
		return AbstractRecord{}, &ParseError{PMID: pmid, Msg: "no PubmedArticle element in payload"}
	}

	art := set.Articles[0].Citation
	var parts []string
	for _, t := range art.Article.Abstract.Texts {
		text := cleanText(t.Inner)
		if text == "" {
			continue
		}
		if t.Label != "" {
			text = t.Label + ": " + text
		}
		parts = append(parts, text)
	}

	rec := AbstractRecord{
		Abstract: strings.Join(parts, "\n\n"),
		Title:    cleanText(art.Article.Title.Inner),
		Year:     art.Article.Journal.PubDate.Year,
	}
	if rec.Year == "" && len(art.Article.Journal.PubDate.MedlineDate) >= 4 {
		rec.Year = art.Article.Journal.PubDate.MedlineDate[:4]
	}
	for _, m := range art.MeSH {
		if d := strings.TrimSpace(m.Descriptor); d != "" {
			rec.MeSHTerms = append(rec.MeSHTerms, d)
		}
	}
	if rec.Abstract == "" {
		return rec, &ParseError{PMID: pmid, Msg: "no abstract text"}
	}
	return rec, nil
}
