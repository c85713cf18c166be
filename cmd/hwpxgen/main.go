package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thegrantai/hwpxgen/pkg/archive"
	"github.com/thegrantai/hwpxgen/pkg/budget"
	"github.com/thegrantai/hwpxgen/pkg/classify"
	"github.com/thegrantai/hwpxgen/pkg/content"
	"github.com/thegrantai/hwpxgen/pkg/export"
	"github.com/thegrantai/hwpxgen/pkg/extract"
	"github.com/thegrantai/hwpxgen/pkg/inject"
	"github.com/thegrantai/hwpxgen/pkg/placeholder"
	"github.com/thegrantai/hwpxgen/pkg/section"
	"github.com/thegrantai/hwpxgen/pkg/template"
)

var version = "0.1.0"

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "hwpxgen",
		Short: "Grant document generation pipeline",
		Long: `hwpxgen fills HWPX grant-application templates from structured
editor content.

It extracts a flat field record from headings, paragraphs, and tables,
derives budget cost shares from the region policy, substitutes the
template's {{placeholder}} tokens, and reassembles the archive with the
container's exact member order and compression contract.`,
		Version: version,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(fieldsCmd())
	rootCmd.AddCommand(placeholdersCmd())
	rootCmd.AddCommand(templatesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	if verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			return logger
		}
	}
	return zap.NewNop()
}

// extractionOptions loads the optional pattern override files.
func extractionOptions(signaturesPath, sectionsPath string) (*extract.Options, error) {
	opts := &extract.Options{}
	if signaturesPath != "" {
		signatures, err := classify.LoadSignatures(signaturesPath)
		if err != nil {
			return nil, err
		}
		opts.Signatures = signatures
	}
	if sectionsPath != "" {
		sections, err := section.LoadConfig(sectionsPath)
		if err != nil {
			return nil, err
		}
		opts.Sections = sections
	}
	return opts, nil
}

func loadTree(path string) (*content.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading content file %s: %w", path, err)
	}
	return content.DecodeEditorJSON(data)
}

func exportCmd() *cobra.Command {
	var (
		contentPath    string
		templateDir    string
		templateURL    string
		templateName   string
		outPath        string
		fileName       string
		signaturesPath string
		sectionsPath   string
		showDiag       bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Generate a filled document from editor content",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			defer logger.Sync()

			tree, err := loadTree(contentPath)
			if err != nil {
				return err
			}

			opts, err := extractionOptions(signaturesPath, sectionsPath)
			if err != nil {
				return err
			}

			var fetcher template.Fetcher
			if templateURL != "" {
				fetcher = template.NewHTTPFetcher(templateURL, nil)
			} else {
				store, err := template.NewStore(templateDir, logger)
				if err != nil {
					return err
				}
				fetcher = store
			}

			service := export.NewService(fetcher, logger, opts)
			result, err := service.Export(cmd.Context(), export.Request{
				Tree:     tree,
				Template: templateName,
				FileName: fileName,
			})
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = result.FileName
			}
			if err := os.WriteFile(outPath, result.Data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}

			fmt.Printf("Wrote %s (%d bytes)\n", outPath, len(result.Data))
			if showDiag {
				encoded, err := json.MarshalIndent(result.Diagnostics, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(encoded))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&contentPath, "content", "", "editor content JSON file (required)")
	cmd.Flags().StringVar(&templateDir, "template-dir", "templates", "template store directory")
	cmd.Flags().StringVar(&templateURL, "template-url", "", "fetch templates from this base URL instead of the store")
	cmd.Flags().StringVar(&templateName, "template", "early", "template variant name")
	cmd.Flags().StringVar(&outPath, "out", "", "output path (defaults to the generated filename)")
	cmd.Flags().StringVar(&fileName, "filename", "", "override the generated download filename")
	cmd.Flags().StringVar(&signaturesPath, "signatures", "", "table signature override YAML")
	cmd.Flags().StringVar(&sectionsPath, "sections", "", "section pattern override YAML")
	cmd.Flags().BoolVar(&showDiag, "diagnostics", false, "print the diagnostics report")
	cmd.MarkFlagRequired("content")

	return cmd
}

func fieldsCmd() *cobra.Command {
	var (
		contentPath    string
		signaturesPath string
		sectionsPath   string
		withBudget     bool
	)

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Extract the field record from editor content and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadTree(contentPath)
			if err != nil {
				return err
			}

			opts, err := extractionOptions(signaturesPath, sectionsPath)
			if err != nil {
				return err
			}

			record, stats := extract.Extract(tree, opts)
			if withBudget {
				budget.Apply(record)
			}

			// Stable output: sorted non-empty keys first, then a summary.
			keys := make([]string, 0, len(record))
			for key, value := range record {
				if value != "" {
					keys = append(keys, key)
				}
			}
			sort.Strings(keys)

			filled := make(map[string]string, len(keys))
			for _, key := range keys {
				filled[key] = record[key]
			}
			encoded, err := json.MarshalIndent(filled, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			fmt.Fprintf(os.Stderr, "tables=%d classified=%d empty_fields=%d\n",
				stats.Tables, stats.ClassifiedTables, stats.EmptyFields)
			return nil
		},
	}

	cmd.Flags().StringVar(&contentPath, "content", "", "editor content JSON file (required)")
	cmd.Flags().StringVar(&signaturesPath, "signatures", "", "table signature override YAML")
	cmd.Flags().StringVar(&sectionsPath, "sections", "", "section pattern override YAML")
	cmd.Flags().BoolVar(&withBudget, "budget", false, "apply the budget calculator before printing")
	cmd.MarkFlagRequired("content")

	return cmd
}

func placeholdersCmd() *cobra.Command {
	var templatePath string

	cmd := &cobra.Command{
		Use:   "placeholders",
		Short: "List the placeholder identifiers a template references",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(templatePath)
			if err != nil {
				return fmt.Errorf("reading template %s: %w", templatePath, err)
			}
			parts, err := archive.ReadParts(data)
			if err != nil {
				return err
			}

			paths := make([]string, 0, len(parts))
			for path := range parts {
				paths = append(paths, path)
			}
			sort.Strings(paths)

			for _, path := range paths {
				normalized, _ := placeholder.Normalize(string(parts[path]))
				ids := placeholder.Identifiers(normalized)
				if len(ids) == 0 {
					continue
				}
				fmt.Printf("%s (prefix %s):\n", path, inject.DetectPrefix(normalized))
				for _, id := range ids {
					fmt.Printf("  {{%s}}\n", id)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&templatePath, "template-file", "", "template archive to inspect (required)")
	cmd.MarkFlagRequired("template-file")

	return cmd
}

func templatesCmd() *cobra.Command {
	var templateDir string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the template variants in a store directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := template.NewStore(templateDir, newLogger())
			if err != nil {
				return err
			}
			for _, name := range store.Variants() {
				fmt.Println(name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&templateDir, "template-dir", "templates", "template store directory")

	return cmd
}
