package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"quickstart/internal/api"
	"quickstart/internal/wizard"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submit RUN STEP [key=value...]",
		Short: "Store form fields for one wizard step",
		Long: "Store form fields for one wizard step. Keys may carry the section prefix " +
			"(plex_url) or not (url). Empty values store null; true/false and integers are typed.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseAssignments(args[2:])
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *wizard.Service) error {
				sub, err := svc.SubmitStep(cmd.Context(), args[0], args[1], fields)
				if err != nil {
					return err
				}
				return emit(cmd, ctx, api.FromSubmission(sub), func(out io.Writer) error {
					rec := sub.Record
					fmt.Fprintf(out, "Saved %s for run %s (validated: %s, user entered: %s)\n",
						rec.Section, rec.RunID, yesNo(rec.Validated), yesNo(rec.UserEntered))
					for _, w := range sub.Warnings {
						fmt.Fprintf(out, "warning: %s\n", w.Error())
					}
					if sub.Check != nil && !sub.Check.Validated {
						fmt.Fprintf(out, "check failed: %s\n", sub.Check.Error)
					}
					_, err := fmt.Fprintf(out, "Next: %s (%s, %d%%)\n", sub.Next.Step.ID, sub.Next.Step.DisplayName, sub.Next.Progress)
					return err
				})
			})
		},
	}
}
