package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sichgate/sichgate/internal/catalog"
	"github.com/sichgate/sichgate/internal/testcase"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List built-in scenarios or custom scenario files",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(newListScenariosCmd())
	cmd.AddCommand(newListTestsCmd())
	return cmd
}

func newListScenariosCmd() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List built-in test scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := catalog.Select(strings.TrimSpace(group))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tCASES\tNAME")
			for _, sc := range scenarios {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", sc.ID, sc.Category, len(sc.Cases), sc.Name)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&group, "group", "all", "scenario group: all|behavioral|capability|disclosure")
	return cmd
}

func newListTestsCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "tests",
		Short: "List scenarios from a directory of YAML files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := testcase.LoadFromDir(dir)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tCASES\tNAME")
			for _, sc := range scenarios {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", sc.ID, sc.Category, len(sc.Cases), sc.Name)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "tests", "directory of YAML scenario files")
	return cmd
}
