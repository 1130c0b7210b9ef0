package main

import (
	"os"

	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Start a line-mode research shell",
	Long: `Interactive reads commands from standard input:

  search <query>    list matching articles
  abstract <pmid>   print one abstract
  quit | exit       leave the shell

Any other line runs a summary research workflow for that text.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, closeGen, err := newAgent(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		defer closeGen()
		return a.RunInteractive(cmd.Context(), os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
