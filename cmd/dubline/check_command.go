package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dubline/internal/preflight"
	"dubline/internal/textutil"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report external binaries and directory readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			failures := 0
			rows := make([][]string, 0, 6)
			for _, status := range preflight.CheckSystemDeps(cfg) {
				state := "ok"
				detail := status.Command
				if !status.Available {
					state = "missing"
					detail = status.Detail
					if !status.Optional {
						failures++
					}
				}
				rows = append(rows, []string{status.Name, state, detail})
			}
			for _, result := range preflight.RunAll(cmd.Context(), cfg, ctx.runner) {
				if !result.Passed {
					failures++
				}
				rows = append(rows, []string{result.Name, textutil.Ternary(result.Passed, "ok", "failed"), result.Detail})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows))
			if failures > 0 {
				return fmt.Errorf("%d check(s) failed", failures)
			}
			fmt.Fprintln(out, renderStatusLine("Ready", statusOK, "all checks passed", shouldColorize(out)))
			return nil
		},
	}
}
