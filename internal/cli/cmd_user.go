package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/agrolink/agrolink/internal/app"
	"github.com/agrolink/agrolink/internal/storage"
	"github.com/spf13/cobra"
)

func newUserCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User accounts",
	}
	cmd.AddCommand(
		newUserRegisterCommand(deps),
		newUserLoginCommand(deps),
		newUserShowCommand(deps),
	)
	return cmd
}

func newUserRegisterCommand(deps commandDeps) *cobra.Command {
	var (
		req           app.RegisterRequest
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a user",
		Example: "  agrolink user register --email ona@example.com --name Ona --password-stdin < pw.txt\n" +
			"  agrolink user register --email jonas@example.com --name Jonas --password secret --phone '+370 600 12345'",
		Args: noPositionalArgs("user register"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				password, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				req.Password = password
			}
			if strings.TrimSpace(req.Email) == "" {
				return usageErrorf("user register requires --email")
			}
			if req.Password == "" {
				return usageErrorf("user register requires --password or --password-stdin")
			}
			if strings.TrimSpace(req.Name) == "" {
				return usageErrorf("user register requires --name")
			}

			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				id, err := env.services.Accounts.Register(ctx, req)
				if err != nil {
					return err
				}
				user := env.services.Accounts.GetUser(ctx, id)
				if user == nil {
					return fmt.Errorf("registered user %d could not be read back", id)
				}
				return printUser(deps, user)
			})
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Phone number")
	return cmd
}

func newUserLoginCommand(deps commandDeps) *cobra.Command {
	var (
		email         string
		password      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check credentials and print the matching user",
		Args:  noPositionalArgs("user login"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				value, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = value
			}
			if strings.TrimSpace(email) == "" {
				return usageErrorf("user login requires --email")
			}

			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				user, err := env.services.Accounts.Login(ctx, email, password)
				if err != nil {
					return err
				}
				if user == nil {
					return &ExitError{Code: ExitCodeAuthFailed, Err: errors.New("invalid email or password")}
				}
				return printUser(deps, user)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func newUserShowCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a user",
		Args:  exactlyOneID("user show"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				user := env.services.Accounts.GetUser(ctx, id)
				if user == nil {
					return notFoundErrorf("user %d not found", id)
				}
				return printUser(deps, user)
			})
		},
	}
}

func printUser(deps commandDeps, user *storage.User) error {
	view := newUserView(user)
	if deps.globals.JSON {
		return printJSON(deps.out, view)
	}
	if deps.globals.Quiet {
		_, err := fmt.Fprintln(deps.out, view.ID)
		return err
	}
	return renderDetails(deps.out, [][2]string{
		{"id", formatID(view.ID)},
		{"email", view.Email},
		{"name", view.Name},
		{"phone", view.Phone},
		{"registered", formatTime(view.CreatedAt)},
	})
}

func readPassword(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
