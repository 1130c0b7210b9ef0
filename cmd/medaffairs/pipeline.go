package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/medaffairs/internal/pipeline"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline <query...>",
	Short: "Run the multi-agent research pipeline",
	Long: `Pipeline creates a project under workspace.dir and runs four stages in
order: literature review and hypothesis generation, methodology planning,
analysis, and paper writing. Each stage writes a JSON checkpoint
(initial, ideation, planning, execution, papers) to the project directory
before the next starts. Draft papers are written to drafts/.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPipeline,
}

var pipelineShowCmd = &cobra.Command{
	Use:   "show <project-dir>",
	Short: "Summarize a project from its checkpoints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := pipeline.LoadReport(args[0])
		if err != nil {
			return err
		}
		printReport(r)
		return nil
	},
}

func init() {
	pipelineCmd.Flags().Bool("human-review", false, "record that hypotheses need human review")
	pipelineCmd.Flags().Int("max", pipeline.DefaultMaxResults, "maximum number of articles to review")
	pipelineCmd.Flags().String("workspace", "", "workspace directory (default: workspace.dir)")

	pipelineCmd.AddCommand(pipelineShowCmd)
	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	gen, closeGen, err := newGenerator(cmd.Context())
	if err != nil {
		return err
	}
	defer closeGen()

	root, _ := cmd.Flags().GetString("workspace")
	if root == "" {
		root = cfg.Workspace.Dir
	}
	review, _ := cmd.Flags().GetBool("human-review")
	maxResults, _ := cmd.Flags().GetInt("max")

	p := pipeline.New(newLiterature(), gen, &pipeline.Workspace{Root: root}, pipeline.WithProgress(os.Stderr))
	r, err := p.Run(cmd.Context(), strings.Join(args, " "), pipeline.RunOptions{
		HumanReview: review || cfg.Workspace.HumanReview,
		MaxResults:  maxResults,
	})
	if r != nil {
		printReport(r)
	}
	return err
}

func printReport(r *pipeline.Report) {
	fmt.Printf("Project:    %s\n", r.Project.ID)
	fmt.Printf("Directory:  %s\n", r.Project.Dir)
	fmt.Printf("Query:      %s\n", r.Project.Query)
	fmt.Printf("Articles:   %d\n", len(r.Articles))
	fmt.Printf("Hypotheses: %d\n\n", len(r.Hypotheses))

	for i, h := range r.Hypotheses {
		status := "pending"
		if i < len(r.Results) {
			status = "supported"
			if r.Results[i].NegativeResult {
				status = "negative result"
			}
		}
		written := i < len(r.Papers)
		fmt.Printf("%d. %s\n   analysis: %s, paper: %t\n", i+1, h.Statement, status, written)
	}
}
