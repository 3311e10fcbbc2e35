package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"quickstart/internal/api"
	"quickstart/internal/validators"
	"quickstart/internal/wizard"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check SECTION [key=value...]",
		Short: "Check credentials for a section against its service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *wizard.Service) error {
				result := svc.ValidateSection(cmd.Context(), args[0], validators.Credentials(fields))
				err := emit(cmd, ctx, api.FromValidation(result), func(out io.Writer) error {
					kind, msg := statusOK, "credentials accepted"
					if !result.Validated {
						kind, msg = statusError, result.Error
					}
					fmt.Fprintln(out, renderStatusLine(args[0], kind, msg, shouldColorize(out)))
					if result.Metadata != nil {
						for key, value := range result.Metadata.All() {
							fmt.Fprintf(out, "  %s: %s\n", key, value.String())
						}
					}
					return nil
				})
				if err != nil {
					return err
				}
				if !result.Validated {
					return fmt.Errorf("%s check failed", args[0])
				}
				return nil
			})
		},
	}
}
