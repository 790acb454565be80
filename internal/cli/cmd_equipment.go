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

func newEquipmentCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "equipment",
		Aliases: []string{"eq"},
		Short:   "Equipment listings",
	}
	cmd.AddCommand(
		newEquipmentAddCommand(deps),
		newEquipmentListCommand(deps),
		newEquipmentMineCommand(deps),
		newEquipmentShowCommand(deps),
		newEquipmentRemoveCommand(deps),
	)
	return cmd
}

func newEquipmentAddCommand(deps commandDeps) *cobra.Command {
	var req app.CreateEquipmentRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "List equipment for sale",
		Example: "  agrolink equipment add --owner 2 --title 'John Deere 6155R' --price 85000 \\\n" +
			"    --image https://img.example/front.jpg --image https://img.example/side.jpg",
		Args: noPositionalArgs("equipment add"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.OwnerID <= 0 {
				return usageErrorf("equipment add requires --owner")
			}
			if strings.TrimSpace(req.Title) == "" {
				return usageErrorf("equipment add requires --title")
			}

			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				owner := env.services.Accounts.GetUser(ctx, req.OwnerID)
				if owner == nil {
					return notFoundErrorf("owner %d not found", req.OwnerID)
				}
				if req.SellerName == "" {
					req.SellerName = owner.Name
				}
				if req.SellerPhone == "" {
					req.SellerPhone = owner.Phone
				}
				if req.ImageURL == "" && len(req.Images) > 0 {
					req.ImageURL = req.Images[0]
				}

				id, err := env.services.Equipment.Create(ctx, req)
				if err != nil {
					return err
				}
				if id == 0 {
					return errors.New("equipment was not saved; see log for details")
				}
				item := env.services.Equipment.Get(ctx, id)
				if item == nil {
					return fmt.Errorf("equipment %d could not be read back", id)
				}
				return printEquipment(deps, *item)
			})
		},
	}

	cmd.Flags().Int64Var(&req.OwnerID, "owner", 0, "Owner user id")
	cmd.Flags().StringVar(&req.Title, "title", "", "Title")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.Flags().Float64Var(&req.Price, "price", 0, "Price in EUR")
	cmd.Flags().StringVar(&req.SellerName, "seller-name", "", "Seller name (defaults to the owner's name)")
	cmd.Flags().StringVar(&req.SellerPhone, "seller-phone", "", "Seller phone (defaults to the owner's phone)")
	cmd.Flags().StringVar(&req.ImageURL, "image-url", "", "Cover image reference (defaults to the first --image)")
	cmd.Flags().StringArrayVar(&req.Images, "image", nil, "Image reference (repeatable, order kept)")
	return cmd
}

func newEquipmentListCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List all equipment, newest first",
		Args:  noPositionalArgs("equipment ls"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				return printEquipmentList(deps, env.services.Equipment.List(ctx))
			})
		},
	}
}

func newEquipmentMineCommand(deps commandDeps) *cobra.Command {
	var ownerID int64

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List equipment owned by a user",
		Args:  noPositionalArgs("equipment mine"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ownerID <= 0 {
				return usageErrorf("equipment mine requires --owner")
			}
			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				return printEquipmentList(deps, env.services.Equipment.ListByOwner(ctx, ownerID))
			})
		},
	}
	cmd.Flags().Int64Var(&ownerID, "owner", 0, "Owner user id")
	return cmd
}

func newEquipmentShowCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one equipment listing",
		Args:  exactlyOneID("equipment show"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				item := env.services.Equipment.Get(ctx, id)
				if item == nil {
					return notFoundErrorf("equipment %d not found", id)
				}
				return printEquipment(deps, *item)
			})
		},
	}
}

func newEquipmentRemoveCommand(deps commandDeps) *cobra.Command {
	var ownerID int64

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove an equipment listing you own",
		Args:  exactlyOneID("equipment rm"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if ownerID <= 0 {
				return usageErrorf("equipment rm requires --owner")
			}
			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				if !env.services.Equipment.Delete(ctx, id, ownerID) {
					return notFoundErrorf("equipment %d not found for owner %d", id, ownerID)
				}
				return printRemoved(deps, "equipment", id)
			})
		},
	}
	cmd.Flags().Int64Var(&ownerID, "owner", 0, "Owner user id")
	return cmd
}

func printEquipment(deps commandDeps, item storage.Equipment) error {
	view := newEquipmentView(item)
	if deps.globals.JSON {
		return printJSON(deps.out, view)
	}
	if deps.globals.Quiet {
		_, err := fmt.Fprintln(deps.out, view.ID)
		return err
	}
	return renderDetails(deps.out, [][2]string{
		{"id", formatID(view.ID)},
		{"title", view.Title},
		{"price", formatPrice(view.Price)},
		{"description", view.Description},
		{"seller", strings.TrimSpace(view.SellerName + " " + view.SellerPhone)},
		{"cover", view.ImageURL},
		{"images", strings.Join(view.Images, "\n")},
		{"owner", formatOwner(view.OwnerID)},
		{"listed", formatTime(view.CreatedAt)},
	})
}

func printEquipmentList(deps commandDeps, items []storage.Equipment) error {
	if deps.globals.JSON {
		views := make([]equipmentView, 0, len(items))
		for _, item := range items {
			views = append(views, newEquipmentView(item))
		}
		return printJSON(deps.out, views)
	}
	if deps.globals.Quiet {
		for _, item := range items {
			if _, err := fmt.Fprintln(deps.out, item.ID); err != nil {
				return err
			}
		}
		return nil
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			formatID(item.ID),
			truncate(item.Title, 40),
			formatPrice(item.Price),
			item.SellerName,
			fmt.Sprintf("%d", len(item.Images)),
			formatOwner(item.OwnerID),
			formatTime(item.CreatedAt),
		})
	}
	return renderTable(deps.out, []string{"ID", "TITLE", "PRICE", "SELLER", "IMAGES", "OWNER", "LISTED"}, rows)
}

func printRemoved(deps commandDeps, kind string, id int64) error {
	if deps.globals.JSON {
		return printJSON(deps.out, map[string]any{"removed": true, "kind": kind, "id": id})
	}
	if deps.globals.Quiet {
		return nil
	}
	_, err := fmt.Fprintf(deps.out, "removed %s %d\n", kind, id)
	return err
}
