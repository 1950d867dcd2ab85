package cli

import (
	"github.com/spf13/cobra"

	"loomsales.app/copilot/internal/service"
	"loomsales.app/copilot/internal/store"
)

func newCrmCommand(e *env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "crm <term>",
		Short: "Look up companies, contacts and deals by name",
		Long: `Look up CRM records by name, returning the same context items the
copilot UI attaches to a question.

Examples:
  copilot crm 华纺
  copilot crm "MES 二期" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			database, err := e.db(ctx)
			if err != nil {
				return err
			}

			items, err := service.NewCrmService(store.NewStores(database.Conn()).Crm()).Search(ctx, args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(e.out, map[string]any{"results": items})
			}
			printCrmItems(e.out, items)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")

	return cmd
}
