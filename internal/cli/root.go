package cli

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

type GlobalOptions struct {
	JSON       bool
	Quiet      bool
	ConfigPath string
	DBPath     string
	LogLevel   string
	Timeout    time.Duration
}

type commandDeps struct {
	globals *GlobalOptions
	build   BuildInfo
	out     io.Writer
	// logOut receives log records unless the config routes them to a file.
	logOut io.Writer
	// env overrides process environment lookups during config loading.
	env    map[string]string
	dotEnv string
}

func NewRootCommand(out io.Writer, build BuildInfo) *cobra.Command {
	return newRootCommand(commandDeps{
		build:  build,
		out:    out,
		logOut: os.Stderr,
	})
}

func newRootCommand(deps commandDeps) *cobra.Command {
	deps.globals = &GlobalOptions{}

	cmd := &cobra.Command{
		Use:           "agrolink",
		Short:         "Agrolink marketplace store",
		Long:          "Manage the local agrolink marketplace store: users, equipment, services, calendar events and news.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(deps.out)
	cmd.SetErr(deps.out)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})

	flags := cmd.PersistentFlags()
	flags.BoolVar(&deps.globals.JSON, "json", false, "Print output as JSON")
	flags.BoolVarP(&deps.globals.Quiet, "quiet", "q", false, "Suppress non-essential output")
	flags.StringVar(&deps.globals.ConfigPath, "config", "", "Path to config.toml")
	flags.StringVar(&deps.globals.DBPath, "db", "", "Path to the store file")
	flags.StringVar(&deps.globals.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.DurationVar(&deps.globals.Timeout, "timeout", 30*time.Second, "Command timeout")

	cmd.AddCommand(
		newVersionCommand(deps),
		newMigrateCommand(deps),
		newUserCommand(deps),
		newEquipmentCommand(deps),
		newServiceCommand(deps),
		newEventCommand(deps),
		newNewsCommand(deps),
		newStatusCommand(deps),
		newDoctorCommand(deps),
		newDebugCommand(deps),
	)
	cmd.InitDefaultCompletionCmd()
	return cmd
}

func noPositionalArgs(name string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != 0 {
			return usageErrorf("%s does not accept positional arguments", name)
		}
		return nil
	}
}

func exactlyOneID(name string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != 1 {
			return usageErrorf("%s requires exactly one id", name)
		}
		return nil
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, usageErrorf("invalid id %q", raw)
	}
	return id, nil
}
