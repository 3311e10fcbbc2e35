package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"quickstart/internal/api"
	"quickstart/internal/catalog"
	"quickstart/internal/settings"
	"quickstart/internal/wizard"
)

func newStepsCommand(ctx *commandContext) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "steps",
		Short: "List wizard steps in order, with stored state when --run is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID = strings.TrimSpace(runID)
			return ctx.withService(func(svc *wizard.Service) error {
				cat := catalog.Build(nil)
				stored := map[string]settings.Record{}
				if runID != "" {
					var err error
					if cat, err = svc.Catalog(cmd.Context(), runID); err != nil {
						return err
					}
					records, err := svc.Records(cmd.Context(), runID)
					if err != nil {
						return err
					}
					for _, rec := range records {
						stored[rec.Section] = rec
					}
				}

				steps := cat.Steps()
				return emit(cmd, ctx, api.CatalogResponse{RunID: runID, Steps: api.FromSteps(steps)}, func(out io.Writer) error {
					headers := []string{"#", "Step", "Name", "Progress"}
					if runID != "" {
						headers = append(headers, "Stored", "Validated")
					}
					rows := make([][]string, 0, len(steps))
					for _, step := range steps {
						row := []string{
							strconv.Itoa(step.Ordinal),
							step.ID,
							step.DisplayName,
							fmt.Sprintf("%d%%", cat.Progress(step.ID)),
						}
						if runID != "" {
							rec, ok := stored[step.ID]
							row = append(row, yesNo(ok), yesNo(ok && rec.Validated))
						}
						rows = append(rows, row)
					}
					footer := fmt.Sprintf("%d steps", cat.Len())
					_, err := fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignRight}, footer))
					return err
				})
			})
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "Run whose library selection and stored sections to include")
	return cmd
}
