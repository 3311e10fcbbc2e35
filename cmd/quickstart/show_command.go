package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"quickstart/internal/api"
	"quickstart/internal/wizard"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asForm bool

	cmd := &cobra.Command{
		Use:   "show RUN [STEP]",
		Short: "Show the stored sections of a run, or one step in detail",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *wizard.Service) error {
				if len(args) == 1 {
					return showRecords(cmd, ctx, svc, args[0])
				}
				view, err := svc.Step(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return emit(cmd, ctx, api.FromStepView(view), func(out io.Writer) error {
					pos := view.Position
					if pos.Redirected {
						fmt.Fprintf(out, "Unknown step %q; showing %s\n", pos.Requested, pos.Step.ID)
					}
					fmt.Fprintf(out, "Step: %s (%s) %d%%\n", pos.Step.ID, pos.Step.DisplayName, pos.Progress)
					fmt.Fprintf(out, "Prev: %s  Next: %s\n", pos.Prev, pos.Next)
					if view.Record.Exists() {
						fmt.Fprintf(out, "Stored: yes (validated: %s, user entered: %s)\n",
							yesNo(view.Record.Validated), yesNo(view.Record.UserEntered))
					} else {
						fmt.Fprintln(out, "Stored: no (showing defaults)")
					}
					if asForm {
						for _, key := range sortedFormKeys(view.Form) {
							fmt.Fprintf(out, "%s=%s\n", key, view.Form[key])
						}
						return nil
					}
					if view.Data.Len() == 0 {
						return nil
					}
					body, err := yaml.Marshal(view.Data)
					if err != nil {
						return fmt.Errorf("encode step data: %w", err)
					}
					_, err = out.Write(body)
					return err
				})
			})
		},
	}
	cmd.Flags().BoolVar(&asForm, "form", false, "Print form fields instead of YAML")
	return cmd
}

func showRecords(cmd *cobra.Command, ctx *commandContext, svc *wizard.Service, runID string) error {
	records, err := svc.Records(cmd.Context(), runID)
	if err != nil {
		return err
	}
	return emit(cmd, ctx, api.FromRecords(records), func(out io.Writer) error {
		if len(records) == 0 {
			_, err := fmt.Fprintf(out, "No sections stored for run %s\n", runID)
			return err
		}
		rows := make([][]string, 0, len(records))
		for _, rec := range records {
			rows = append(rows, []string{
				rec.Section,
				yesNo(rec.Validated),
				yesNo(rec.UserEntered),
				rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
			})
		}
		headers := []string{"Section", "Validated", "User entered", "Updated"}
		_, err := fmt.Fprintln(out, renderTable(headers, rows, nil, ""))
		return err
	})
}
