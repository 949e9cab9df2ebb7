package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/docengine/core/internal/ops"
	"github.com/docengine/core/internal/schema"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a sample paragraph at its optimal points and print the segments",
	RunE: func(cmd *cobra.Command, args []string) error {
		text := "This is the first sentence. This is the second sentence. This is the third."
		points := ops.FindOptimalSplitPoints(text, 3)

		el := schema.ElementRecord{
			ID: "e1", Type: "paragraph", Text: text,
			BoundingBox: schema.NewBoundingBox(0, 0, 400, 100),
			Confidence:  0.95,
		}

		op := ops.NewSplit(el, points)
		segments, err := op.Execute()
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(map[string]any{
			"points":   points,
			"segments": segments,
		}, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		return nil
	},
}
