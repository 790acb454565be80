package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agrolink/agrolink/internal/app"
	"github.com/agrolink/agrolink/internal/storage"
	"github.com/spf13/cobra"
)

func newServiceCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "service",
		Aliases: []string{"svc"},
		Short:   "Agricultural service offers",
	}
	cmd.AddCommand(
		newServiceAddCommand(deps),
		newServiceListCommand(deps),
		newServiceMineCommand(deps),
		newServiceShowCommand(deps),
		newServiceRemoveCommand(deps),
	)
	return cmd
}

func newServiceAddCommand(deps commandDeps) *cobra.Command {
	var (
		req  app.CreateServiceRequest
		unit string
	)

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Offer a service",
		Example: "  agrolink service add --owner 2 --name Ploughing --tool-type plough --price 45 --unit ha",
		Args:    noPositionalArgs("service add"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.OwnerID <= 0 {
				return usageErrorf("service add requires --owner")
			}
			if strings.TrimSpace(req.ServiceName) == "" {
				return usageErrorf("service add requires --name")
			}
			req.PriceUnit = storage.PriceUnit(strings.TrimSpace(unit))
			if !req.PriceUnit.Valid() {
				return usageErrorf("service add --unit must be one of %s", joinUnits(storage.KnownPriceUnits()))
			}

			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				owner := env.services.Accounts.GetUser(ctx, req.OwnerID)
				if owner == nil {
					return notFoundErrorf("owner %d not found", req.OwnerID)
				}
				if req.ProviderName == "" {
					req.ProviderName = owner.Name
				}
				if req.ProviderPhone == "" {
					req.ProviderPhone = owner.Phone
				}

				id, err := env.services.Listings.Create(ctx, req)
				if err != nil {
					return err
				}
				if id == 0 {
					return errors.New("service was not saved; see log for details")
				}
				service := env.services.Listings.Get(ctx, id)
				if service == nil {
					return fmt.Errorf("service %d could not be read back", id)
				}
				return printService(deps, *service)
			})
		},
	}

	cmd.Flags().Int64Var(&req.OwnerID, "owner", 0, "Owner user id")
	cmd.Flags().StringVar(&req.ServiceName, "name", "", "Service name")
	cmd.Flags().StringVar(&req.ToolType, "tool-type", "", "Tool or machine used")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.Flags().Float64Var(&req.Price, "price", 0, "Price in EUR per unit")
	cmd.Flags().StringVar(&unit, "unit", string(storage.PriceUnitHectare), "Price unit: "+joinUnits(storage.KnownPriceUnits()))
	cmd.Flags().StringVar(&req.ProviderName, "provider-name", "", "Provider name (defaults to the owner's name)")
	cmd.Flags().StringVar(&req.ProviderPhone, "provider-phone", "", "Provider phone (defaults to the owner's phone)")
	cmd.Flags().StringVar(&req.ImageURL, "image-url", "", "Image reference")
	return cmd
}

func newServiceListCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List all services, newest first",
		Args:  noPositionalArgs("service ls"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				return printServiceList(deps, env.services.Listings.List(ctx))
			})
		},
	}
}

func newServiceMineCommand(deps commandDeps) *cobra.Command {
	var ownerID int64

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List services offered by a user",
		Args:  noPositionalArgs("service mine"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ownerID <= 0 {
				return usageErrorf("service mine requires --owner")
			}
			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				return printServiceList(deps, env.services.Listings.ListByOwner(ctx, ownerID))
			})
		},
	}
	cmd.Flags().Int64Var(&ownerID, "owner", 0, "Owner user id")
	return cmd
}

func newServiceShowCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one service",
		Args:  exactlyOneID("service show"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				service := env.services.Listings.Get(ctx, id)
				if service == nil {
					return notFoundErrorf("service %d not found", id)
				}
				return printService(deps, *service)
			})
		},
	}
}

// Services are removed by id alone; the store keeps no ownership check for
// them.
func newServiceRemoveCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a service",
		Args:  exactlyOneID("service rm"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				if !env.services.Listings.Delete(ctx, id) {
					return notFoundErrorf("service %d not found", id)
				}
				return printRemoved(deps, "service", id)
			})
		},
	}
}

func printService(deps commandDeps, service storage.Service) error {
	view := newServiceView(service)
	if deps.globals.JSON {
		return printJSON(deps.out, view)
	}
	if deps.globals.Quiet {
		_, err := fmt.Fprintln(deps.out, view.ID)
		return err
	}
	return renderDetails(deps.out, [][2]string{
		{"id", formatID(view.ID)},
		{"service", view.ServiceName},
		{"tool", view.ToolType},
		{"price", formatServicePrice(view.Price, service.PriceUnit)},
		{"description", view.Description},
		{"provider", strings.TrimSpace(view.ProviderName + " " + view.ProviderPhone)},
		{"image", view.ImageURL},
		{"owner", formatOwner(view.OwnerID)},
		{"listed", formatTime(view.CreatedAt)},
	})
}

func printServiceList(deps commandDeps, services []storage.Service) error {
	if deps.globals.JSON {
		views := make([]serviceView, 0, len(services))
		for _, service := range services {
			views = append(views, newServiceView(service))
		}
		return printJSON(deps.out, views)
	}
	if deps.globals.Quiet {
		for _, service := range services {
			if _, err := fmt.Fprintln(deps.out, service.ID); err != nil {
				return err
			}
		}
		return nil
	}

	rows := make([][]string, 0, len(services))
	for _, service := range services {
		rows = append(rows, []string{
			formatID(service.ID),
			truncate(service.ServiceName, 32),
			service.ToolType,
			formatServicePrice(service.Price, service.PriceUnit),
			service.ProviderName,
			formatOwner(service.OwnerID),
			formatTime(service.CreatedAt),
		})
	}
	return renderTable(deps.out, []string{"ID", "SERVICE", "TOOL", "PRICE", "PROVIDER", "OWNER", "LISTED"}, rows)
}

func joinUnits(units []storage.PriceUnit) string {
	out := make([]string, 0, len(units))
	for _, unit := range units {
		out = append(out, string(unit))
	}
	return strings.Join(out, ", ")
}
