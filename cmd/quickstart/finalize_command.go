package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"quickstart/internal/api"
	"quickstart/internal/config"
	"quickstart/internal/schema"
	"quickstart/internal/wizard"
)

func newFinalizeCommand(ctx *commandContext) *cobra.Command {
	var (
		outPath     string
		headerStyle string
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "finalize RUN",
		Short: "Render the run's Kometa config and validate it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *wizard.Service) error {
				res, err := svc.Finalize(cmd.Context(), args[0], wizard.FinalizeOptions{HeaderStyle: strings.TrimSpace(headerStyle)})
				if err != nil {
					return err
				}

				target := strings.TrimSpace(outPath)
				if target != "" {
					if target, err = config.ExpandPath(target); err != nil {
						return fmt.Errorf("resolve output path: %w", err)
					}
					if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
						return fmt.Errorf("create output directory: %w", err)
					}
					if err := os.WriteFile(target, []byte(res.Text), 0o644); err != nil {
						return fmt.Errorf("write config: %w", err)
					}
				}

				err = emit(cmd, ctx, api.FromFinalize(res), func(out io.Writer) error {
					if target == "" {
						if _, err := io.WriteString(out, res.Text); err != nil {
							return err
						}
					} else {
						fmt.Fprintf(out, "Wrote %s (%d sections)\n", target, len(res.Composite.Included))
					}
					return nil
				})
				if err != nil {
					return err
				}

				errOut := cmd.ErrOrStderr()
				fmt.Fprintln(errOut, renderStatusLine("Validation", verdictKind(string(res.Verdict.Status)), verdictMessage(res.Verdict), shouldColorize(errOut)))
				if strict && res.Verdict.Status != schema.StatusValid {
					return fmt.Errorf("config is %s", res.Verdict.Status)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the config to this file instead of stdout")
	cmd.Flags().StringVar(&headerStyle, "header-style", "", "Header style: ascii, divider, or none (default from config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero unless the config validates against the schema")
	return cmd
}

func verdictMessage(v schema.Verdict) string {
	switch v.Status {
	case schema.StatusValid:
		return "config matches the schema"
	case schema.StatusUnknown:
		return "schema unavailable; config not checked"
	}
	if v.Path == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}
