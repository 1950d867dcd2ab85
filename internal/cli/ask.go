package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"loomsales.app/copilot/internal/copilot"
	"loomsales.app/copilot/internal/model"
	"loomsales.app/copilot/internal/service"
)

func newAskCommand(e *env) *cobra.Command {
	var (
		crmFile     string
		historyFile string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Answer a sales question through the full pipeline",
		Long: `Answer a sales question the way the copilot endpoint does: intent
reasoning, optional conversation memory, hybrid retrieval and generation.

CRM context and conversation history are read from JSON files holding the
same arrays the HTTP API accepts.

Examples:
  copilot ask "FA506 能接入你们的数采系统吗"
  copilot ask "它的价格呢" --history-file chat.json --crm-file customer.json
  copilot ask "排产模块怎么收费" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			req := copilot.Request{Query: args[0]}
			if crmFile != "" {
				if err := readJSONFile(crmFile, &req.CrmContexts); err != nil {
					return fmt.Errorf("read crm file: %w", err)
				}
			}
			if historyFile != "" {
				if err := readJSONFile(historyFile, &req.ConversationHistory); err != nil {
					return fmt.Errorf("read history file: %w", err)
				}
			}

			pipeline, err := e.copilot(ctx)
			if err != nil {
				return err
			}

			svc := service.NewCopilotService(pipeline.Orchestrator, pipeline.Embedder, pipeline.Events)
			resp, err := svc.Query(ctx, req)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(e.out, resp)
			}
			printAnswer(e.out, resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&crmFile, "crm-file", "", "JSON file with CRM context items")
	cmd.Flags().StringVar(&historyFile, "history-file", "", "JSON file with conversation history")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw API response")

	return cmd
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func printAnswer(w io.Writer, resp *copilot.Response) {
	fmt.Fprintln(w, resp.Message)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "intent:     %s\n", resp.Intent)
	fmt.Fprintf(w, "confidence: %s\n", resp.Confidence)
	if len(resp.Images) > 0 {
		fmt.Fprintf(w, "images:     %s\n", strings.Join(resp.Images, ", "))
	}
	if resp.Memory != nil {
		fmt.Fprintf(w, "memory:     %s (~%d tokens)\n", resp.Memory.Source, resp.Memory.Tokens)
	}
	fmt.Fprintf(w, "tokens:     %d", resp.Usage.TotalTokens)
	if r, g := resp.Usage.Reasoning, resp.Usage.Generation; r != nil && g != nil {
		fmt.Fprintf(w, " (reasoning %d, generation %d)", r.TotalTokens, g.TotalTokens)
	}
	fmt.Fprintln(w)
}

func printCrmItems(w io.Writer, items []model.CrmContextItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No CRM records found.")
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "[%s] %s (id %s)\n    %s\n", it.Type, it.Name, it.ID, it.Details)
	}
}
