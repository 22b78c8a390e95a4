package kgreason

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/soundprediction/kgreason/pkg/graph"
	"github.com/soundprediction/kgreason/pkg/store"
	"github.com/spf13/cobra"
)

var reasonCmd = &cobra.Command{
	Use:   "reason [question]",
	Short: "Answer a question from the knowledge base",
	Long: `Ground a free-text question in the knowledge base, expand the matched
concepts through their relations and print the inferences found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReason,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the knowledge base with a serialized snapshot",
	Long: `Replace the knowledge base with a JSON or YAML snapshot read from a file,
or from standard input when the file is "-".`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the knowledge base as JSON or YAML",
	RunE:  runExport,
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Remove duplicate concepts and dangling relations",
	RunE:  runOptimize,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the knowledge base to the initial concepts",
	RunE:  runSeed,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print knowledge base statistics",
	RunE:  runStats,
}

var (
	importFormat string
	importRepair bool
	exportFormat string
	exportOutput string
	reasonJSON   bool
)

func init() {
	rootCmd.AddCommand(reasonCmd, importCmd, exportCmd, optimizeCmd, seedCmd, statsCmd)

	reasonCmd.Flags().BoolVar(&reasonJSON, "json", false, "Print the raw reasoning result as JSON")

	importCmd.Flags().StringVar(&importFormat, "format", "", "Snapshot format (json, yaml); inferred from the file extension when empty")
	importCmd.Flags().BoolVar(&importRepair, "repair", false, "Repair malformed JSON before importing")

	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format (json, yaml)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runReason(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	client, _, _, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	result := client.Reason(strings.Join(args, " "))
	out := cmd.OutOrStdout()
	if reasonJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Fprintln(out, client.FormatResult(result))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	format := importFormat
	if format == "" {
		format = string(store.FormatFromPath(args[0]))
	}
	if importRepair {
		if data, err = store.RepairJSON(data); err != nil {
			return err
		}
	}

	client, _, _, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	if err := client.Import(ctx, data, format); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	stats := client.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d concepts and %d relations\n", stats.Concepts, stats.Edges)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	client, _, _, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	data, err := client.Export(exportFormat)
	if err != nil {
		return err
	}
	if exportOutput == "" {
		_, err = io.WriteString(cmd.OutOrStdout(), data)
		return err
	}
	if err := os.WriteFile(exportOutput, []byte(data), 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported knowledge base to %s\n", exportOutput)
	return nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	client, _, _, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	stats := client.Optimize(ctx)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Duplicate concepts removed: %d\n", stats.DuplicateConceptsRemoved)
	fmt.Fprintf(out, "Invalid relations removed:  %d\n", stats.InvalidRelationsRemoved)
	fmt.Fprintf(out, "Orphaned concepts:          %d\n", stats.OrphanedConceptsCount)
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	client, _, _, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	client.Graph().ReplaceWith(graph.NewInitialKnowledgeBase())
	client.Manager().ClearCaches()
	if err := client.Manager().Save(ctx); err != nil {
		return fmt.Errorf("failed to save seeded knowledge base: %w", err)
	}
	stats := client.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d concepts and %d relations\n", stats.Concepts, stats.Edges)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	client, _, _, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(client.Stats())
}
