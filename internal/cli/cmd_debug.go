package cli

import (
	"context"
	"fmt"
	"strings"

	debugpkg "github.com/agrolink/agrolink/internal/debug"
	"github.com/spf13/cobra"
)

func newDebugCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "debug",
		Short:   "Diagnostics helpers",
		Example: "  agrolink debug bundle --output ./agrolink-debug.json",
	}
	cmd.AddCommand(newDebugBundleCommand(deps))
	return cmd
}

func newDebugBundleCommand(deps commandDeps) *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Collect store diagnostics into a JSON bundle",
		Example: "  agrolink debug bundle --output ./agrolink-debug.json\n" +
			"  agrolink --json debug bundle --output ./agrolink-debug.json",
		Args: noPositionalArgs("debug bundle"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(outputPath) == "" {
				return usageErrorf("debug bundle requires --output")
			}

			bundle := debugpkg.NewBundle()
			bundle.Version = map[string]any{
				"version":    deps.build.Version,
				"commit":     deps.build.Commit,
				"build_time": deps.build.BuildTime,
			}

			// The bundle is still written when the store cannot be opened.
			storeErr := withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				bundle.Config = map[string]any{
					"db_path":      env.cfg.Storage.Path,
					"storage_mode": string(env.cfg.Storage.Mode),
					"busy_timeout": env.cfg.Storage.BusyTimeout.String(),
					"log_level":    env.cfg.Logging.Level,
					"log_format":   env.cfg.Logging.Format,
					"log_file":     env.cfg.Logging.File != "",
				}
				report, err := env.store.Inspect(ctx)
				if err != nil {
					return err
				}
				bundle.Store = &report
				bundle.Checks = append(bundle.Checks, debugpkg.StoreChecks(report)...)
				return nil
			})
			if storeErr != nil {
				bundle.Checks = append(bundle.Checks, debugpkg.Check{Name: "store", OK: false, Message: storeErr.Error()})
			}

			if err := debugpkg.WriteBundle(outputPath, bundle); err != nil {
				return mapCommandError(err)
			}
			if deps.globals.JSON {
				return printJSON(deps.out, map[string]any{"output": outputPath})
			}
			if deps.globals.Quiet {
				return nil
			}
			_, err := fmt.Fprintf(deps.out, "wrote debug bundle to %s\n", outputPath)
			return err
		},
	}
	cmd.Flags().StringVar(&outputPath, "output", "", "Output path for the bundle")
	return cmd
}
