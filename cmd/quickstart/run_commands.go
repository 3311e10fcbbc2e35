package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"quickstart/internal/api"
	"quickstart/internal/wizard"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Manage wizard runs",
	}

	runCmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Create a new run identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *wizard.Service) error {
				id, err := svc.NewRun(cmd.Context())
				if err != nil {
					return err
				}
				return emit(cmd, ctx, api.RunResponse{RunID: id, Created: true}, func(out io.Writer) error {
					_, err := fmt.Fprintln(out, id)
					return err
				})
			})
		},
	})

	runCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored runs, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *wizard.Service) error {
				runs, err := svc.Runs(cmd.Context())
				if err != nil {
					return err
				}
				if runs == nil {
					runs = []string{}
				}
				return emit(cmd, ctx, api.RunListResponse{Runs: runs}, func(out io.Writer) error {
					if len(runs) == 0 {
						_, err := fmt.Fprintln(out, "No runs stored")
						return err
					}
					for _, id := range runs {
						if _, err := fmt.Fprintln(out, id); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	})

	return runCmd
}
