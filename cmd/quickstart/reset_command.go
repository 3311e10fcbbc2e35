package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quickstart/internal/wizard"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset RUN [STEP]",
		Short: "Clear one stored step, or every step of a run",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			section := ""
			if len(args) == 2 {
				section = args[1]
			}
			return ctx.withService(func(svc *wizard.Service) error {
				if err := svc.Reset(cmd.Context(), args[0], section); err != nil {
					return err
				}
				if section == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared run %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s for run %s\n", section, args[0])
				}
				return nil
			})
		},
	}
}
