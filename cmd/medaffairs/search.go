package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/medaffairs/internal/agent"
	"github.com/pdiddy/medaffairs/internal/pubmed"
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search PubMed and list matching articles",
	Long: `Search runs a PubMed query and prints the hits in relevance order. The
first ten results are enriched with their abstracts. --clinical restricts the
search to clinical trials and takes precedence over --recent.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	addSearchFlags(searchCmd)
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

// addSearchFlags registers the flags that select and cap the search.
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("clinical", false, "only clinical trials")
	cmd.Flags().String("phase", "", "clinical trial phase filter (I-IV), with --clinical")
	cmd.Flags().Int("recent", 0, "only articles published in the last N years")
	cmd.Flags().Int("max", agent.DefaultMaxResults, "maximum number of results")
}

func searchOptions(cmd *cobra.Command) agent.Options {
	clinical, _ := cmd.Flags().GetBool("clinical")
	phase, _ := cmd.Flags().GetString("phase")
	recent, _ := cmd.Flags().GetInt("recent")
	maxResults, _ := cmd.Flags().GetInt("max")
	return agent.Options{
		MaxResults:  maxResults,
		Clinical:    clinical,
		Phase:       phase,
		RecentYears: recent,
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	a := agent.New(newLiterature(), nil, nil)

	articles, err := a.Search(cmd.Context(), query, searchOptions(cmd))
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return pubmed.FormatJSON(articles, os.Stdout)
	}
	pubmed.FormatTable(articles, os.Stdout)
	return nil
}
