package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/ormasoftchile/inquest/pkg/runtime"
	"github.com/ormasoftchile/inquest/pkg/schema"
	"github.com/ormasoftchile/inquest/pkg/termio"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "inquest",
	Short: "Scripted interactive questionnaire engine",
	Long:  "inquest — resolves a declarative bundle of questions, mappings, statements and reviews into a set of named parameter values.",
}

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate [bundle.json]",
	Short: "Validate a bundle file against the schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	b, errs := schema.ValidateFile(filePath)
	printValidationWarnings(errs)
	if hasValidationErrors(errs) {
		fmt.Fprintf(os.Stderr, "Validation failed: %d error(s)\n\n", countValidationErrors(errs))
		i := 0
		for _, e := range errs {
			if e.Severity == "warning" {
				continue
			}
			i++
			fmt.Fprintf(os.Stderr, "  %d. [%s] %s\n", i, e.Phase, e.Message)
			if e.Path != "" {
				fmt.Fprintf(os.Stderr, "     at: %s\n", e.Path)
			}
		}
		return fmt.Errorf("validation failed with %d error(s)", countValidationErrors(errs))
	}
	fmt.Printf("✓ %s is valid (%d actions)\n", filePath, len(b.Actions))
	return nil
}

// --- run ---

var (
	runParamsFile    string
	runParams        []string
	runNoSkipDefined bool
	runResults       string
	runTrace         string
	runAnswers       string
	runPlain         bool
	runWidth         int
)

var runCmd = &cobra.Command{
	Use:   "run [bundle.json]",
	Short: "Run the interactive conversation defined by a bundle",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	// Validate first
	b, errs := schema.ValidateFile(filePath)
	if hasValidationErrors(errs) {
		fmt.Fprintf(os.Stderr, "Validation failed: %d error(s)\n", countValidationErrors(errs))
		for _, e := range errs {
			if e.Severity != "warning" {
				fmt.Fprintf(os.Stderr, "  [%s] %s\n", e.Phase, e.Message)
			}
		}
		return fmt.Errorf("bundle validation failed")
	}
	printValidationWarnings(errs)

	initial := make(map[string]any)
	if runParamsFile != "" {
		loaded, err := schema.LoadParamsFile(runParamsFile)
		if err != nil {
			return err
		}
		for k, v := range loaded {
			initial[k] = v
		}
	}

	// --param overrides win over the parameters file. Values arrive as raw
	// strings; the engine coerces them against the declared types.
	for _, p := range runParams {
		parts := strings.SplitN(p, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid --param %q: expected key=value", p)
		}
		initial[parts[0]] = parts[1]
	}

	input, err := buildInput()
	if err != nil {
		return err
	}
	defer input.Close()

	var trace *runtime.TraceWriter
	if runTrace != "" {
		trace, err = runtime.NewTraceWriter(runTrace)
		if err != nil {
			return err
		}
		defer trace.Close()
	}

	q, err := runtime.NewQuestioner(runtime.Config{
		Interactions:      b.Actions,
		InitialParameters: initial,
		NoSkipDefined:     runNoSkipDefined,
		Input:             input,
		Output:            os.Stdout,
		PrintOptions: termio.PrintOptions{
			Width:    runWidth,
			Color:    !runPlain,
			Markdown: !runPlain,
		},
		Trace: trace,
	})
	if err != nil {
		return err
	}

	if err := q.Question(context.Background()); err != nil {
		return err
	}

	if runResults != "" {
		doc := &runtime.ResultsDocument{Values: q.Values(), Results: q.Results()}
		if err := runtime.WriteResultsFile(runResults, doc); err != nil {
			return err
		}
		fmt.Printf("\n✓ Results written to %s\n", runResults)
		return nil
	}

	fmt.Println()
	out, err := yaml.Marshal(q.Values())
	if err != nil {
		return fmt.Errorf("marshal values: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

// buildInput picks the line source: a scripted answers file when supplied,
// readline on a real terminal, plain stdin otherwise (pipes, CI).
func buildInput() (termio.LineSource, error) {
	if runAnswers != "" {
		data, err := os.ReadFile(runAnswers)
		if err != nil {
			return nil, fmt.Errorf("open answers file: %w", err)
		}
		var answers []string
		for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			answers = append(answers, strings.TrimRight(line, "\r"))
		}
		return termio.NewScriptSource(answers...), nil
	}
	if readline.DefaultIsTerminal() {
		return termio.NewReadlineSource()
	}
	return termio.NewStdinSource(os.Stdin, os.Stdout), nil
}

// --- schema export ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Schema operations",
}

var schemaExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export JSON Schema to stdout",
	RunE:  runSchemaExport,
}

func runSchemaExport(cmd *cobra.Command, args []string) error {
	data, err := schema.GenerateJSONSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("inquest %s (build: %s)\n", version, commit)
	},
}

func init() {
	runCmd.Flags().StringVar(&runParamsFile, "params", "", "Path to an initial-parameters file (JSON or YAML)")
	runCmd.Flags().StringArrayVar(&runParams, "param", nil, "Set an initial parameter (key=value), repeatable")
	runCmd.Flags().BoolVar(&runNoSkipDefined, "no-skip-defined", false, "Ask every question even when its parameter is already defined")
	runCmd.Flags().StringVar(&runResults, "results", "", "Write values and audit trail to this file (.yaml or .json)")
	runCmd.Flags().StringVar(&runTrace, "trace", "", "Append every recorded result to this JSONL file")
	runCmd.Flags().StringVar(&runAnswers, "answers", "", "Replay answers from this file (one per line) instead of prompting")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "Disable colors and markdown rendering")
	runCmd.Flags().IntVar(&runWidth, "width", 0, "Wrap column for output (default 80)")

	schemaCmd.AddCommand(schemaExportCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}

// hasValidationErrors returns true if any error (non-warning) is present.
func hasValidationErrors(errs []*schema.ValidationError) bool {
	for _, e := range errs {
		if e.Severity != "warning" {
			return true
		}
	}
	return false
}

// countValidationErrors counts non-warning errors.
func countValidationErrors(errs []*schema.ValidationError) int {
	n := 0
	for _, e := range errs {
		if e.Severity != "warning" {
			n++
		}
	}
	return n
}

// printValidationWarnings prints any warnings to stderr.
func printValidationWarnings(errs []*schema.ValidationError) {
	for _, e := range errs {
		if e.Severity == "warning" {
			fmt.Fprintf(os.Stderr, "  ⚠ [%s] %s\n", e.Phase, e.Message)
		}
	}
}
