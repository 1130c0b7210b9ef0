// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the medaffairs CLI: literature search,
// single-shot document generation, the multi-agent research pipeline, an
// interactive shell, and an HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/medaffairs/internal/config"
	"github.com/pdiddy/medaffairs/internal/logging"
	"github.com/pdiddy/medaffairs/internal/secrets"
	"github.com/pdiddy/medaffairs/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is loaded once per invocation by the root PersistentPreRunE.
var cfg *types.Config

var rootCmd = &cobra.Command{
	Use:   "medaffairs",
	Short: "Literature search and document generation for medical affairs",
	Long: `medaffairs searches PubMed and drafts medical-affairs documents from the
results with a generative model: evidence summaries, abstracts, paper drafts,
slide outlines, KOL briefings, competitive analyses, and medical information
responses. The pipeline command chains hypothesis generation, planning,
analysis, and paper writing into one run with JSON checkpoints.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./medaffairs.yaml or ~/.config/medaffairs/medaffairs.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory of credential files")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("secrets-dir")
	store, err := secrets.Load(dir)
	if err != nil {
		return err
	}

	file, _ := cmd.Flags().GetString("config")
	c, used, err := config.Load(config.Options{File: file, Secrets: store})
	if err != nil {
		return err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		c.Log.Level = lvl
	}
	if err := logging.Init(os.Stderr, c.Log.Level, c.Log.Format); err != nil {
		return err
	}

	log := logrus.WithField("component", "cli")
	if used != "" {
		log.WithField("file", used).Debug("using config file")
	}
	if keys := store.Keys(); len(keys) > 0 {
		log.WithField("keys", keys).Debug("loaded secrets")
	}
	cfg = c
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
