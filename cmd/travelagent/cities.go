package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"travelagent/weather"
)

func newCitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List the cities the weather tool knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, c := range weather.KnownCities() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), c); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
