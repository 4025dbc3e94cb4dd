// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianPlan/services/planner/plan"
	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
)

func (c *cli) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <task> <plan-file>",
		Short: "Replay a plan and check that it reaches the goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := problem.DecodeFile(args[0])
			if err != nil {
				return &exitCodeError{code: exitInvalid, err: err}
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open plan: %w", err)
			}
			defer f.Close()

			pl, err := plan.Parse(p, f)
			if err != nil {
				return &exitCodeError{code: exitInvalid, err: err}
			}
			if _, err := plan.Validate(p, pl); err != nil {
				return &exitCodeError{code: exitNoPlan, err: err}
			}
			fmt.Fprintf(c.stdout, "plan valid (%d steps)\n", len(pl))
			return nil
		},
	}
}
