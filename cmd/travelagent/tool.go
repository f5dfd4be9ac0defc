package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"travelagent/tools"
)

func newToolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tool <name> [json-input]",
		Short: "Invoke a single tool and print its observation",
		Example: `  travelagent tool flight_search '{"source_city": "Delhi", "destination_city": "Goa"}'
  travelagent tool quick_budget_calculator '{"total_budget": 25000, "number_of_days": 3}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wireApp(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer a.Close()

			input := "{}"
			if len(args) == 2 {
				input = args[1]
			}
			result := a.registry.Invoke(cmd.Context(), args[0], tools.Text(input))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if result.Failed() {
				return fmt.Errorf("tool %s failed", args[0])
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer a.Close()
			for _, t := range a.registry.GetTools() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", t.Name(), t.Title())
			}
			return nil
		},
	})
	return cmd
}
