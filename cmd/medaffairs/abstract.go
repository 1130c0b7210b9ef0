package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/medaffairs/internal/agent"
)

var abstractCmd = &cobra.Command{
	Use:   "abstract <pmid...>",
	Short: "Fetch article abstracts by PMID",
	Long: `Abstract fetches the full abstract text, title, year, and MeSH terms for
each PMID. Requests are spaced by literature.request_delay. A PMID whose
abstract cannot be fetched or parsed is reported and does not stop the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAbstract,
}

func init() {
	abstractCmd.Flags().Bool("json", false, "output records as JSON")

	rootCmd.AddCommand(abstractCmd)
}

func runAbstract(cmd *cobra.Command, args []string) error {
	records := newLiterature().FetchAbstracts(cmd.Context(), args)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	failed := 0
	for i, rec := range records {
		if i > 0 {
			fmt.Println()
		}
		agent.WriteAbstract(os.Stdout, rec)
		if rec.Error != "" {
			failed++
		}
	}
	if failed == len(records) {
		return fmt.Errorf("no abstracts retrieved")
	}
	return nil
}
