package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"qcinsights/internal/domain/training"
	"qcinsights/server"
)

var (
	importFormat string
	patternLimit int
	activeOnly   bool
	confirmClear bool
)

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", "", "format for sheets that cannot be detected (WIS_QC, BUILD_REVIEW, CLIENT_FEEDBACK)")
	patternsCmd.Flags().IntVar(&patternLimit, "limit", 20, "maximum patterns to print, 0 for all")
	patternsCmd.Flags().BoolVar(&activeOnly, "active", false, "only active patterns")
	clearCmd.Flags().BoolVar(&confirmClear, "yes", false, "confirm deletion of all training data")

	rootCmd.AddCommand(importCmd, mineCmd, classifyCmd, statsCmd, patternsCmd, patternCmd, suggestionsCmd, clearCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import QC feedback workbooks",
	Long: `Import one or more workbooks (xlsx, csv or json) and mine patterns after each.

Examples:
  qcctl import feedback.xlsx
  qcctl import --format CLIENT_FEEDBACK notes.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Merge unprocessed records into patterns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		uc, err := useCase()
		if err != nil {
			return err
		}
		result, err := uc.MinePatterns(commandContext(cmd))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Show the category and keywords for a feedback text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uc, err := useCase()
		if err != nil {
			return err
		}
		preview, err := uc.Classify(commandContext(cmd), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), preview)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print record and pattern statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		uc, err := useCase()
		if err != nil {
			return err
		}
		stats, err := uc.GetStats(commandContext(cmd))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), stats)
	},
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List patterns by occurrence count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		uc, err := useCase()
		if err != nil {
			return err
		}
		patterns, err := uc.ListPatterns(commandContext(cmd), activeOnly, patternLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, p := range patterns {
			fmt.Fprintf(out, "%-8s %5d  %s\n", shortID(p.ID), p.OccurrenceCount, p.PatternName)
		}
		return nil
	},
}

var patternCmd = &cobra.Command{
	Use:   "pattern <id>",
	Short: "Show a pattern with its recent records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uc, err := useCase()
		if err != nil {
			return err
		}
		detail, err := uc.GetPatternDetail(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), detail)
	},
}

var suggestionsCmd = &cobra.Command{
	Use:   "suggestions",
	Short: "Print QC process suggestions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		uc, err := useCase()
		if err != nil {
			return err
		}
		suggestions, err := uc.GetSuggestions(commandContext(cmd))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, s := range suggestions {
			fmt.Fprintf(out, "[%s] %-16s %s\n", s.Priority, s.Type, s.Message)
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all records and patterns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmClear {
			return fmt.Errorf("refusing to delete training data without --yes")
		}
		uc, err := useCase()
		if err != nil {
			return err
		}
		ctx := commandContext(cmd)
		result, err := uc.ClearAll(ctx)
		if err != nil {
			return err
		}
		server.LogInfo(ctx, "training data cleared from cli", "db", app.Config.DatabasePath)
		return printJSON(cmd.OutOrStdout(), result)
	},
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	summaries := make([]*training.ImportSummary, 0, len(args))
	for _, path := range args {
		start := time.Now()
		summary, err := importOne(cmd, path)
		if err != nil {
			server.LogError(ctx, err, "import failed", "file", path)
			return fmt.Errorf("import %s: %w", path, err)
		}
		for _, w := range summary.Warnings {
			server.LogWarn(ctx, "import warning", "file", path, "warning", w)
		}
		server.LogDuration(ctx, "import "+filepath.Base(path), time.Since(start),
			"records", summary.Successful,
			"warnings", len(summary.Warnings),
		)
		summaries = append(summaries, summary)
	}
	return printJSON(cmd.OutOrStdout(), summaries)
}

func importOne(cmd *cobra.Command, path string) (*training.ImportSummary, error) {
	uc, err := useCase()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return uc.ImportFile(commandContext(cmd), f, filepath.Base(path), importFormat)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
