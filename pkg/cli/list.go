package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"digital.vasic.verify/pkg/registry"
	"digital.vasic.verify/pkg/testcase"
)

// NewListCommand creates the list command.
func NewListCommand(reg registry.Registry) *cobra.Command {
	var (
		inputFile string
		namesOnly bool
		locations bool
	)
	cmd := &cobra.Command{
		Use:   "list [test-spec]...",
		Short: "List the registered test cases",
		Long: `List the test cases matching the given specs, or every
registered test case, in registration order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tests, specs, err := selectTests(reg, args, inputFile)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if namesOnly {
				for _, t := range tests {
					fmt.Fprintln(w, t.Name)
				}
				return nil
			}

			if len(specs) == 0 {
				fmt.Fprintln(w, "All available test cases:")
			} else {
				fmt.Fprintln(w, "Matching test cases:")
			}
			for _, t := range tests {
				printTest(cmd, t, locations)
			}
			fmt.Fprintln(w, plural(len(tests),
				"matching test case", "matching test cases"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputFile, "input-file", "f", "",
		"Read test specs from a file")
	cmd.Flags().BoolVar(&namesOnly, "names-only", false,
		"Print only the names, one per line")
	cmd.Flags().BoolVarP(&locations, "locations", "l", false,
		"Print the source location of each test case")
	return cmd
}

func printTest(cmd *cobra.Command, t testcase.Info, locations bool) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "  %s\n", t.Name)
	if t.Description != "" {
		fmt.Fprintf(w, "      %s\n", t.Description)
	}
	if locations {
		fmt.Fprintf(w, "      %s\n", t.Location())
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
