package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/wifilab/internal/rules"
)

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields CASE_PATH",
		Short: "Show the case type and editable fields for a test case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info := rules.ComputeEditable(args[0])
			fmt.Printf("case type: %s\n", info.CaseType)

			keys := info.Fields()
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		},
	}
}
