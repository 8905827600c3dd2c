// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projsim/projsim/internal/modelfile"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Validate a project model and report unreachable tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _, err := modelfile.Load(modelPath)
		if err != nil {
			return err
		}
		warnings := project.Audit()
		if len(warnings) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "ok: every task is reachable")
			return nil
		}
		for _, w := range warnings {
			fmt.Fprintln(cmd.OutOrStdout(), w)
		}
		return fmt.Errorf("%d unreachable task(s)", len(warnings))
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
