package main

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/medaffairs/internal/agent"
	"github.com/pdiddy/medaffairs/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research <query...>",
	Short: "Search the literature and generate a document",
	Long: `Research searches PubMed, synthesizes the hits with the generative model,
and writes a Markdown document to output.dir. --task selects the document:
` + taskList() + `.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, _ := cmd.Flags().GetString("task")
		task, err := types.ParseTaskType(tag)
		if err != nil {
			return err
		}
		return runResearch(cmd, args, task)
	},
}

// Shorthand commands, one per task.
var taskCmds = []struct {
	use   string
	task  types.TaskType
	short string
}{
	{"summary", types.TaskSummary, "Write an evidence summary"},
	{"paper", types.TaskPaper, "Draft a literature review paper"},
	{"slides", types.TaskSlides, "Draft a slide outline"},
	{"kol", types.TaskKOLBriefing, "Prepare a KOL meeting briefing"},
	{"competitive", types.TaskCompetitive, "Write a competitive landscape analysis"},
	{"medinfo", types.TaskMedicalInfo, "Draft a medical information response"},
}

func init() {
	addResearchFlags(researchCmd)
	researchCmd.Flags().String("task", string(types.TaskSummary), "document to generate: "+taskList())
	rootCmd.AddCommand(researchCmd)

	for _, tc := range taskCmds {
		task := tc.task
		cmd := &cobra.Command{
			Use:   tc.use + " <query...>",
			Short: tc.short,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runResearch(cmd, args, task)
			},
		}
		addResearchFlags(cmd)
		rootCmd.AddCommand(cmd)
	}
}

func addResearchFlags(cmd *cobra.Command) {
	addSearchFlags(cmd)
	cmd.Flags().StringSlice("focus", nil, "focus areas for summaries (comma-separated)")
	cmd.Flags().String("product", "", "product for competitive analysis (default: the query)")
	cmd.Flags().StringSlice("competitors", nil, "competitor products (comma-separated)")
	cmd.Flags().Bool("json", false, "print the result as JSON")
}

func taskList() string {
	names := make([]string, len(types.TaskTypes))
	for i, t := range types.TaskTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func runResearch(cmd *cobra.Command, args []string, task types.TaskType) error {
	opts := searchOptions(cmd)
	opts.Focus, _ = cmd.Flags().GetStringSlice("focus")
	opts.Product, _ = cmd.Flags().GetString("product")
	opts.Competitors, _ = cmd.Flags().GetStringSlice("competitors")

	a, closeGen, err := newAgent(cmd.Context(), os.Stderr)
	if err != nil {
		return err
	}
	defer closeGen()

	res := a.Research(cmd.Context(), strings.Join(args, " "), task, opts)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else if res.Success {
		agent.WriteResult(os.Stdout, res)
	}
	if !res.Success {
		return errors.New(res.Error)
	}
	return nil
}
