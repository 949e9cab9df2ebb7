package cmd

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/docengine/core/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run the extraction engine against the built-in sample document",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := extract.NewRegistry()
		if err := registry.Register(sampleExtractor{}); err != nil {
			return err
		}

		engine := extract.New(registry)
		doc, info := engine.Extract(context.Background(), extract.Document{ID: "sample-doc"}, nil, nil)

		out, err := json.MarshalIndent(map[string]any{
			"schema": doc,
			"info":   info,
		}, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		return nil
	},
}
