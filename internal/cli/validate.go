package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/wifilab/internal/config"
	"github.com/gyaneshwarpardhi/wifilab/internal/rules"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the lab config and the rule set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := config.Read(globalOpts.ConfigPath)
			if err != nil {
				return exitWithCode(err, ExitInternalError)
			}
			if err := config.Validate(snap); err != nil {
				return exitWithCode(fmt.Errorf("config invalid: %w", err), ExitValidation)
			}
			if _, err := rules.DefaultRegistry(rules.Options{}); err != nil {
				return exitWithCode(fmt.Errorf("rule set invalid: %w", err), ExitValidation)
			}
			fmt.Println("ok")
			return nil
		},
	}
}
