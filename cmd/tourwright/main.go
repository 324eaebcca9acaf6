package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tourwright/tourwright/pkg/debugger"
	"github.com/tourwright/tourwright/pkg/diagram"
	"github.com/tourwright/tourwright/pkg/tour"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

var logLevel string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tourwright",
	Short: "Guided tour orchestration engine",
	Long:  "tourwright — condition-driven orchestration of guided tours: validate, run, and debug tour definitions.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(logLevel)
	},
}

func configureLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate [tour.yaml]",
	Short: "Validate a tour YAML file against the schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	t, errs := tour.ValidateFile(args[0])
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
	steps := 0
	for _, g := range t.Groups {
		steps += len(g.Items)
	}
	fmt.Printf("✓ %s is valid (%d groups, %d steps)\n", t.Meta.Name, len(t.Groups), steps)
	return nil
}

// --- play ---

var playCmd = &cobra.Command{
	Use:   "play [tour.yaml]",
	Short: "Launch the interactive REPL for a tour",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	t, errs := tour.ValidateFile(args[0])
	printValidationWarnings(errs)
	if hasValidationErrors(errs) {
		printValidationFailures(errs)
		return fmt.Errorf("tour validation failed")
	}

	d, err := debugger.New(t, tour.BuildConfig{
		Logger:  slog.Default(),
		Effects: panelEffects(os.Stdout),
	})
	if err != nil {
		return fmt.Errorf("create debugger: %w", err)
	}
	return d.Run()
}

// --- diagram ---

var diagramFormat string

var diagramCmd = &cobra.Command{
	Use:   "diagram [tour.yaml]",
	Short: "Generate a diagram of the tour flow",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiagram,
}

func runDiagram(cmd *cobra.Command, args []string) error {
	t, errs := tour.ValidateFile(args[0])
	printValidationWarnings(errs)
	if hasValidationErrors(errs) {
		printValidationFailures(errs)
		return fmt.Errorf("tour validation failed")
	}

	out, err := diagram.Generate(t, diagram.Format(diagramFormat))
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
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
	data, err := tour.GenerateJSONSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	var out json.RawMessage = data
	formatted, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(string(formatted))
	return nil
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tourwright %s (build: %s)\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	diagramCmd.Flags().StringVar(&diagramFormat, "format", "mermaid", "Diagram format: mermaid or ascii")

	schemaCmd.AddCommand(schemaExportCmd)

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(diagramCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}

// hasValidationErrors returns true if any error (non-warning) is present.
func hasValidationErrors(errs []*tour.ValidationError) bool {
	for _, e := range errs {
		if e.Severity != "warning" {
			return true
		}
	}
	return false
}

// countValidationErrors counts non-warning errors.
func countValidationErrors(errs []*tour.ValidationError) int {
	n := 0
	for _, e := range errs {
		if e.Severity != "warning" {
			n++
		}
	}
	return n
}

// printValidationWarnings prints any warnings to stderr.
func printValidationWarnings(errs []*tour.ValidationError) {
	for _, e := range errs {
		if e.Severity == "warning" {
			fmt.Fprintf(os.Stderr, "  ⚠ [%s] %s\n", e.Phase, e.Message)
			if e.Path != "" {
				fmt.Fprintf(os.Stderr, "    at: %s\n", e.Path)
			}
		}
	}
}

func printValidationFailures(errs []*tour.ValidationError) {
	fmt.Fprintf(os.Stderr, "Validation failed: %d error(s)\n", countValidationErrors(errs))
	for _, e := range errs {
		if e.Severity != "warning" {
			fmt.Fprintf(os.Stderr, "  [%s] %s\n", e.Phase, e.Message)
		}
	}
}
