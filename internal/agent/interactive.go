// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/medaffairs/internal/pubmed"
	"github.com/pdiddy/medaffairs/pkg/types"
)

const prompt = "medaffairs> "

// RunInteractive reads commands from in until EOF, "quit", or "exit":
//
//	search <query>   list matching articles
//	abstract <pmid>  print one abstract
//	<anything else>  run a summary research workflow
//
// Blank lines are ignored. Per-command failures are printed to out and the
// loop continues.
func (a *Agent) RunInteractive(ctx context.Context, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	fmt.Fprintln(out, "Medical affairs research assistant. Commands: search <query>, abstract <pmid>, quit")
	for {
		fmt.Fprint(out, prompt)
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(sc.Text())
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch strings.ToLower(cmd) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "search":
			if arg == "" {
				fmt.Fprintln(out, "usage: search <query>")
				continue
			}
			articles, err := a.Search(ctx, arg, Options{})
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			pubmed.FormatTable(articles, out)
		case "abstract":
			if arg == "" {
				fmt.Fprintln(out, "usage: abstract <pmid>")
				continue
			}
			WriteAbstract(out, a.Abstract(ctx, arg))
		default:
			WriteResult(out, a.Research(ctx, line, types.TaskSummary, Options{}))
		}
	}
}

// WriteResult prints a human-readable summary of r.
func WriteResult(w io.Writer, r Result) {
	if !r.Success {
		fmt.Fprintf(w, "Error: %s\n", r.Error)
		return
	}
	fmt.Fprintf(w, "\nTask:     %s\n", r.TaskType)
	fmt.Fprintf(w, "Query:    %s\n", r.Query)
	fmt.Fprintf(w, "Articles: %d\n", len(r.Articles))
	fmt.Fprintf(w, "Output:   %s\n", r.OutputPath)
	fmt.Fprintf(w, "Elapsed:  %.1fs\n\n", r.ElapsedSeconds)
	fmt.Fprintln(w, r.Summary)
}

// WriteAbstract prints one abstract record.
func WriteAbstract(w io.Writer, rec pubmed.AbstractRecord) {
	fmt.Fprintf(w, "PMID: %s\n", rec.PMID)
	if rec.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", rec.Title)
	}
	if rec.Year != "" {
		fmt.Fprintf(w, "Year: %s\n", rec.Year)
	}
	if rec.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", rec.Error)
		return
	}
	fmt.Fprintf(w, "\n%s\n", rec.Abstract)
	if len(rec.MeSHTerms) > 0 {
		fmt.Fprintf(w, "\nMeSH: %s\n", strings.Join(rec.MeSHTerms, "; "))
	}
}
