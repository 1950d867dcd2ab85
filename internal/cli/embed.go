package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"loomsales.app/copilot/common/embedding"
	"loomsales.app/copilot/internal/service"
)

func newEmbedCommand(e *env) *cobra.Command {
	var (
		kind   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "embed <text>",
		Short: "Embed a text with the configured model",
		Long: `Embed a text the way retrieval does. Use --type document when checking
how knowledge base entries are indexed.

Examples:
  copilot embed "FA506 数据采集"
  copilot embed "排产规则说明" --type document --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pipeline, err := e.copilot(ctx)
			if err != nil {
				return err
			}

			svc := service.NewCopilotService(pipeline.Orchestrator, pipeline.Embedder, nil)
			vector, err := svc.Embed(ctx, args[0], embedding.ParseKind(kind))
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(e.out, map[string]any{"embedding": vector})
			}
			printVector(e.out, pipeline.Embedder.Model(), vector)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", string(embedding.KindQuery), "text type: query or document")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full vector as JSON")

	return cmd
}

func printVector(w io.Writer, model string, v []float32) {
	fmt.Fprintf(w, "model: %s\ndimensions: %d\n", model, len(v))
	head := v
	if len(head) > 8 {
		head = head[:8]
	}
	fmt.Fprintf(w, "head: %v\n", head)
}
