package cli

import (
	"context"
	"fmt"
	"strings"

	debugpkg "github.com/agrolink/agrolink/internal/debug"
	"github.com/spf13/cobra"
)

func newStatusCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show the store location and row counts",
		Example: "  agrolink status\n  agrolink --json status",
		Args:    noPositionalArgs("status"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				report, err := env.store.Inspect(ctx)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, report)
				}
				if deps.globals.Quiet {
					return nil
				}
				if err := renderDetails(deps.out, [][2]string{
					{"path", report.Path},
					{"journal", report.JournalMode},
					{"admin", formatID(report.AdminID)},
				}); err != nil {
					return err
				}
				rows := make([][]string, 0, len(report.Tables))
				for _, table := range report.Tables {
					rows = append(rows, []string{table.Name, formatID(table.Rows), fmt.Sprint(len(table.Columns))})
				}
				return renderTable(deps.out, []string{"TABLE", "ROWS", "COLUMNS"}, rows)
			})
		},
	}
}

func newDoctorCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the store schema and ownership backfill",
		Args:  noPositionalArgs("doctor"),
		RunE: func(cmd *cobra.Command, args []string) error {
			var checks []debugpkg.Check
			err := withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				report, err := env.store.Inspect(ctx)
				if err != nil {
					return err
				}
				checks = append(checks, debugpkg.Check{Name: "config", OK: true, Message: env.cfg.Storage.Path})
				checks = append(checks, debugpkg.StoreChecks(report)...)
				return nil
			})
			if err != nil {
				checks = append(checks, debugpkg.Check{Name: "store", OK: false, Message: err.Error()})
			}

			if deps.globals.JSON {
				if err := printJSON(deps.out, map[string]any{"checks": checks}); err != nil {
					return mapCommandError(err)
				}
			} else if !deps.globals.Quiet {
				for _, check := range checks {
					state := "ok"
					if !check.OK {
						state = "fail"
					}
					if _, err := fmt.Fprintf(deps.out, "%s: %s (%s)\n", check.Name, state, check.Message); err != nil {
						return mapCommandError(err)
					}
				}
			}

			if err != nil {
				return err
			}
			failed := make([]string, 0)
			for _, check := range checks {
				if !check.OK {
					failed = append(failed, check.Name)
				}
			}
			if len(failed) > 0 {
				return asExitError(ExitCodeGeneric, fmt.Errorf("doctor: failed checks: %s", strings.Join(failed, ", ")))
			}
			return nil
		},
	}
}
