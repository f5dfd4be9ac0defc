package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "travelagent",
		Short:         "Plan trips with a tool-using reasoning agent",
		Long:          "travelagent answers free-text trip requests by letting a language model call flight, hotel, attraction, weather and budget tools until it can write a complete itinerary.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newPlanCmd(),
		newToolCmd(),
		newCitiesCmd(),
	)

	return rootCmd
}
