package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spigell/job-research/internal/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tool catalogue with input schemas",
	Run: func(cmd *cobra.Command, _ []string) {
		if names, _ := cmd.Flags().GetBool("names"); names {
			for _, t := range tools.Catalogue() {
				fmt.Printf("%-28s %s\n", t.Name, t.Description)
			}
			return
		}

		if err := printJSON(os.Stdout, tools.Catalogue()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)

	toolsCmd.Flags().BoolP("names", "n", false, "print only names and descriptions")
}
