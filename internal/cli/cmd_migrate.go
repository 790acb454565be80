package cli

import (
	"context"
	"fmt"

	"github.com/agrolink/agrolink/internal/storage"
	"github.com/spf13/cobra"
)

type migrateResult struct {
	Path       string `json:"path"`
	AdminID    int64  `json:"admin_id"`
	AdminEmail string `json:"admin_email"`
}

func newMigrateCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the store file up to the current schema",
		Long: "Create missing tables, add columns introduced by newer releases and assign\n" +
			"ownerless equipment to the admin account. Safe to run any number of times.",
		Args: noPositionalArgs("migrate"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				if err := env.store.EnsureSchema(ctx); err != nil {
					return err
				}
				backfill, err := env.store.Backfill(ctx)
				if err != nil {
					return fmt.Errorf("ownership backfill: %w", err)
				}

				result := migrateResult{
					Path:       env.store.Path(),
					AdminID:    backfill.AdminID,
					AdminEmail: storage.AdminEmail,
				}
				if deps.globals.JSON {
					return printJSON(deps.out, result)
				}
				if deps.globals.Quiet {
					return nil
				}
				return renderDetails(deps.out, [][2]string{
					{"store", result.Path},
					{"schema", "up to date"},
					{"admin", fmt.Sprintf("%s (id %d)", result.AdminEmail, result.AdminID)},
				})
			})
		},
	}
}
