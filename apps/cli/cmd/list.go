package cmd

import (
	"fmt"

	"github.com/restlabs/restcheck/packages/core/suite"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>",
	Short: "List all checks in suite files",
	Long: `List all checks defined in .yaml suite files.

Examples:
  restcheck list circuits.yaml
  restcheck list ./suites/`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no .yaml or .yml suite files found")
	}

	for _, file := range files {
		s, err := suite.Load(file)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error parsing %s: %v\n", file, err)
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", file)
		for _, test := range s.Tests {
			name := test.Name
			if name == "" {
				name = fmt.Sprintf("%s %s", test.Request.Method, test.Request.URL)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", name)
			if test.Skip != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "    skip: %s\n", test.Skip)
			}
		}
	}

	return nil
}
