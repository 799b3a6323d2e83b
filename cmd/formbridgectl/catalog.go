package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"leadcapture/formbridge/internal/catalog"
)

var catalogFormat string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the CRM field catalog",
	Long: `Catalog prints the field catalog the server would load, grouped by
category. CATALOG_PATH overrides the built-in catalog.

Example:
  formbridgectl catalog --format json`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogFormat, "format", "yaml", "output format: yaml or json")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	out := cmd.OutOrStdout()
	switch catalogFormat {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(cat.ByCategory()); err != nil {
			return fmt.Errorf("encode catalog: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cat.Entries())
	default:
		return fmt.Errorf("unknown format %q (valid: yaml, json)", catalogFormat)
	}
}
