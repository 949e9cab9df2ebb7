package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/docengine/core/internal/ops"
	"github.com/docengine/core/internal/schema"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge two sample text elements and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs := []schema.ElementRecord{
			{ID: "e1", Type: "text", Text: "Hello.", BoundingBox: schema.NewBoundingBox(0, 0, 10, 10), Confidence: 0.9},
			{ID: "e2", Type: "text", Text: "World", BoundingBox: schema.NewBoundingBox(20, 0, 30, 10), Confidence: 0.8},
		}

		op := ops.NewMerge(inputs)
		merged, err := op.Execute()
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(merged, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		return nil
	},
}
